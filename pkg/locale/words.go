package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed data/*.yaml
var bundled embed.FS

// commonFile holds the shared lists used when a locale omits an optional one.
const commonFile = "common.yaml"

// ErrMissingDefault is returned by [Load] when the default locale cannot be
// loaded. Without it no content can be produced.
var ErrMissingDefault = errors.New("locale: default locale data missing")

// WordSet is one locale's vocabulary. A WordSet obtained from a [Bundle] is
// shared by all callers and must not be modified.
type WordSet struct {
	Titles     []string `yaml:"titles"`
	Albums     []string `yaml:"albums"`
	FirstNames []string `yaml:"first_names"`
	LastNames  []string `yaml:"last_names"`
	BandWords  []string `yaml:"band_words"`
	Genres     []string `yaml:"genres"`
	Reviews    []string `yaml:"reviews"`
}

// lists returns the named lists in a fixed order for validation and
// fallback handling.
func (w *WordSet) lists() []struct {
	name string
	list *[]string
} {
	return []struct {
		name string
		list *[]string
	}{
		{"titles", &w.Titles},
		{"albums", &w.Albums},
		{"first_names", &w.FirstNames},
		{"last_names", &w.LastNames},
		{"band_words", &w.BandWords},
		{"genres", &w.Genres},
		{"reviews", &w.Reviews},
	}
}

// Bundle holds the frozen word sets of every supported locale.
type Bundle struct {
	sets [numLocales]*WordSet
}

// Words returns the vocabulary for l. Unknown values yield the default
// locale's vocabulary.
func (b *Bundle) Words(l Locale) *WordSet {
	if l >= numLocales {
		l = Default
	}
	return b.sets[l]
}

// Load parses word lists from fsys, which must contain "<code>.yaml" files
// for the supported locales plus an optional "common.yaml".
//
// The default locale must be present and every list in it must be non-empty
// once the common lists are applied; otherwise Load fails. Other locales may
// be absent or partial: a missing genre list falls back to the common list,
// and any other missing list falls back to the default locale's list.
func Load(fsys fs.FS) (*Bundle, error) {
	var common WordSet
	if data, err := fs.ReadFile(fsys, commonFile); err == nil {
		if err := yaml.Unmarshal(data, &common); err != nil {
			return nil, fmt.Errorf("locale: parse %s: %w", commonFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("locale: read %s: %w", commonFile, err)
	}

	def, err := readWordSet(fsys, Default)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s.yaml", ErrMissingDefault, Default.Code())
		}
		return nil, err
	}
	if len(def.Genres) == 0 {
		def.Genres = common.Genres
	}
	for _, l := range def.lists() {
		if len(*l.list) == 0 {
			return nil, fmt.Errorf("%w: %s.yaml has no %s", ErrMissingDefault, Default.Code(), l.name)
		}
	}

	b := &Bundle{}
	b.sets[Default] = def
	for _, loc := range all {
		if loc == Default {
			continue
		}
		ws, err := readWordSet(fsys, loc)
		if errors.Is(err, fs.ErrNotExist) {
			b.sets[loc] = def
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(ws.Genres) == 0 && len(common.Genres) > 0 {
			ws.Genres = common.Genres
		}
		fallback := def.lists()
		for i, l := range ws.lists() {
			if len(*l.list) == 0 {
				*l.list = *fallback[i].list
			}
		}
		b.sets[loc] = ws
	}
	return b, nil
}

func readWordSet(fsys fs.FS, l Locale) (*WordSet, error) {
	name := l.Code() + ".yaml"
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var ws WordSet
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("locale: parse %s: %w", name, err)
	}
	return &ws, nil
}

// bundledFS returns the embedded data directory.
func bundledFS() fs.FS {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

var loadBundled = sync.OnceValues(func() (*Bundle, error) {
	return Load(bundledFS())
})

// MustLoad returns the bundle built from the embedded word lists. The lists
// are parsed on the first call only. It panics if the embedded data is
// invalid, which makes the process unable to produce any content.
func MustLoad() *Bundle {
	b, err := loadBundled()
	if err != nil {
		panic(err)
	}
	return b
}
