// Package archive packs rendered clips into a single zip file.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/klauspost/compress/zip"
)

// MediaType is the MIME type of packed archives.
const MediaType = "application/zip"

// Separator joins the parts of an entry name.
const Separator = "_"

// epoch is the modification time stamped on every entry. Zip timestamps
// cannot precede 1980.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrEmptyData is returned for an entry with no content.
var ErrEmptyData = errors.New("archive: empty entry")

// Entry is one file in the archive.
type Entry struct {
	Name string
	Data []byte
}

// invalid lists characters rejected in file names on common filesystems.
const invalid = `<>:"/\|?*`

// Sanitize replaces characters that are not valid in a file name with an
// underscore. Leading and trailing spaces and dots are trimmed and an empty
// result becomes "untitled".
func Sanitize(name string) string {
	s := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(invalid, r) || r == unicode.ReplacementChar {
			return '_'
		}
		return r
	}, name)
	s = strings.Trim(s, " .")
	if s == "" {
		return "untitled"
	}
	return s
}

// EntryName builds the file name for a song: title, album and artist joined
// by [Separator], sanitized, with ext appended.
func EntryName(title, album, artist, ext string) string {
	name := Sanitize(strings.Join([]string{title, album, artist}, Separator))
	if ext == "" {
		return name
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// Namer hands out unique names. The first use of a name keeps it; later
// uses get " (2)", " (3)" and so on before the extension.
type Namer struct {
	used map[string]bool
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{used: make(map[string]bool)}
}

// Unique returns name, or the first suffixed variant not yet handed out.
func (n *Namer) Unique(name string) string {
	if !n.used[name] {
		n.used[name] = true
		return name
	}
	base, ext := splitExt(name)
	for i := 2; ; i++ {
		candidate := base + " (" + strconv.Itoa(i) + ")" + ext
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}

func splitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// Write writes entries to w in order, renaming duplicates. It stops at the
// first failing entry; the output is then incomplete and must be discarded.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	names := NewNamer()
	for i, e := range entries {
		if len(e.Data) == 0 {
			return fmt.Errorf("%w: entry %d %q", ErrEmptyData, i, e.Name)
		}
		hdr := &zip.FileHeader{
			Name:     names.Unique(Sanitize(e.Name)),
			Method:   zip.Deflate,
			Modified: epoch,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("archive: create %q: %w", hdr.Name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			return fmt.Errorf("archive: write %q: %w", hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	return nil
}

// Pack returns the archive bytes for entries.
func Pack(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
