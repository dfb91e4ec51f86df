// Package cover produces album art for generated songs.
//
// Covers are optional. A provider may be slow or fail; callers treat the
// cover as absent until one is produced and never hold back metadata for it.
package cover

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ErrNoImage is returned when a provider answers without image data.
var ErrNoImage = errors.New("cover: provider returned no image")

// Provider generates a cover and returns it as a data URL.
type Provider interface {
	Generate(ctx context.Context, title, artist, genre string) (string, error)
}

// ProviderName selects a Provider implementation.
type ProviderName string

const (
	ProviderNone   ProviderName = "none"
	ProviderOpenAI ProviderName = "openai"
	ProviderGemini ProviderName = "gemini"
)

// Config configures a remote provider.
type Config struct {
	Provider   ProviderName
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New returns the configured provider wrapped with the local fallback. The
// "none" provider, or an empty one, yields the fallback alone.
func New(ctx context.Context, cfg Config) (Provider, error) {
	var primary Provider
	var err error
	switch cfg.Provider {
	case "", ProviderNone:
		return Fallback{}, nil
	case ProviderOpenAI:
		primary, err = NewOpenAI(cfg)
	case ProviderGemini:
		primary, err = NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("cover: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithFallback(primary, Fallback{}), nil
}

// Prompt builds the text-to-image prompt for a song.
func Prompt(title, artist, genre string) string {
	var b strings.Builder
	b.WriteString("Album cover art for ")
	if genre != "" {
		b.WriteString("a " + strings.ToLower(genre) + " song ")
	}
	fmt.Fprintf(&b, "titled %q by %s. Square composition, no text or lettering.", title, artist)
	return b.String()
}

// DataURL encodes an image as a data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL splits a base64 data URL into its media type and payload.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("cover: not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("cover: malformed data URL")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("cover: data URL is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("cover: decode data URL: %w", err)
	}
	return mimeType, data, nil
}

type fallbackProvider struct {
	primary  Provider
	fallback Provider
}

// WithFallback returns a provider that tries primary and, on failure, logs
// the error and answers from fallback.
func WithFallback(primary, fallback Provider) Provider {
	return &fallbackProvider{primary: primary, fallback: fallback}
}

func (p *fallbackProvider) Generate(ctx context.Context, title, artist, genre string) (string, error) {
	url, err := p.primary.Generate(ctx, title, artist, genre)
	if err == nil {
		return url, nil
	}
	slog.Warn("cover provider failed, using fallback", "title", title, "error", err)
	return p.fallback.Generate(ctx, title, artist, genre)
}
