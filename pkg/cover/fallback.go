package cover

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FallbackSize is the edge length of fallback covers in pixels.
const FallbackSize = 512

// Fallback draws a diagonal two-colour gradient with the title and artist
// written across it. Colours derive from a hash of title and artist, so the
// same song always gets the same cover. It never fails.
type Fallback struct{}

var _ Provider = Fallback{}

func (Fallback) Generate(_ context.Context, title, artist, _ string) (string, error) {
	data, err := Render(title, artist)
	if err != nil {
		return "", err
	}
	return DataURL("image/png", data), nil
}

// Render returns the fallback cover as PNG bytes.
func Render(title, artist string) ([]byte, error) {
	h := xxhash.New()
	h.WriteString(title)
	h.Write([]byte{0})
	h.WriteString(artist)
	sum := h.Sum64()
	from := palette(sum)
	to := palette(sum >> 32)

	img := image.NewRGBA(image.Rect(0, 0, FallbackSize, FallbackSize))
	span := 2 * (FallbackSize - 1)
	for y := range FallbackSize {
		for x := range FallbackSize {
			img.SetRGBA(x, y, lerp(from, to, x+y, span))
		}
	}

	d := &font.Drawer{Dst: img, Src: image.White, Face: basicfont.Face7x13}
	drawCentered(d, title, FallbackSize/2-8)
	drawCentered(d, artist, FallbackSize/2+14)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// palette picks a muted colour from the low 24 bits of v.
func palette(v uint64) color.RGBA {
	return color.RGBA{
		R: 40 + uint8(v)%160,
		G: 40 + uint8(v>>8)%160,
		B: 40 + uint8(v>>16)%160,
		A: 0xff,
	}
}

func lerp(a, b color.RGBA, n, span int) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8((int(x)*(span-n) + int(y)*n) / span)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

// drawCentered draws s horizontally centred on the baseline y, cutting it
// to fit the image width.
func drawCentered(d *font.Drawer, s string, y int) {
	const margin = 16
	r := []rune(s)
	for len(r) > 0 && d.MeasureString(string(r)).Ceil() > FallbackSize-2*margin {
		r = r[:len(r)-1]
	}
	w := d.MeasureString(string(r)).Ceil()
	d.Dot = fixed.P((FallbackSize-w)/2, y)
	d.DrawString(string(r))
}
