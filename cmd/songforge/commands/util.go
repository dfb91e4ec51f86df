package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/haivivi/songforge/cmd/songforge/internal/config"
	"github.com/haivivi/songforge/pkg/audio/pcm"
	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/cli"
	"github.com/haivivi/songforge/pkg/cover"
	"github.com/haivivi/songforge/pkg/locale"
	"github.com/haivivi/songforge/pkg/render"
	"github.com/haivivi/songforge/pkg/store"
)

// newRenderer builds the audio renderer from cfg.Audio.
func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	format, err := pcm.ForRate(cfg.Audio.SampleRate)
	if err != nil {
		return nil, err
	}
	return render.New(
		render.WithCodec(cfg.Audio.Codec),
		render.WithFormat(format),
		render.WithBitrate(cfg.Audio.Bitrate),
	)
}

// openStore opens the record cache from cfg.Store.
func openStore(cfg *config.Config) (store.Store, error) {
	st, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newEnricher builds the cover provider from cfg.Cover and binds it to st.
func newEnricher(ctx context.Context, cfg *config.Config, st store.Store) (*cover.Enricher, error) {
	p, err := cover.New(ctx, cover.Config{
		Provider: cfg.Cover.Provider,
		Model:    cfg.Cover.Model,
		APIKey:   cfg.Cover.APIKey,
		BaseURL:  cfg.Cover.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return cover.NewEnricher(p, st, cfg.Cover.Workers, cfg.Cover.Timeout), nil
}

// paramFlags binds the batch selection flags shared by generate and export.
type paramFlags struct {
	page    int
	lang    string
	seed    int64
	likes   float64
	count   int
	reqFile string
}

func (f *paramFlags) register(fs *pflag.FlagSet) {
	d := catalog.DefaultParams()
	fs.IntVar(&f.page, "page", d.Page, "page number, starting at 1")
	fs.StringVar(&f.lang, "lang", d.Locale, "locale code (en, de, uk)")
	fs.Int64Var(&f.seed, "seed", d.Seed, "catalog seed")
	fs.Float64Var(&f.likes, "likes", d.AvgLikes, "average likes per song")
	fs.IntVar(&f.count, "count", d.Count, "songs per page")
	fs.StringVarP(&f.reqFile, "file", "f", "", "request file (YAML or JSON)")
}

// params resolves the batch parameters: defaults, then the request file,
// then any flag set explicitly on the command line.
func (f *paramFlags) params(fs *pflag.FlagSet) (catalog.Params, error) {
	p := catalog.DefaultParams()
	if f.reqFile != "" {
		if err := cli.LoadRequest(f.reqFile, &p); err != nil {
			return p, err
		}
	}
	if fs.Changed("page") {
		p.Page = f.page
	}
	if fs.Changed("lang") {
		p.Locale = f.lang
	}
	if fs.Changed("seed") {
		p.Seed = f.seed
	}
	if fs.Changed("likes") {
		p.AvgLikes = f.likes
	}
	if fs.Changed("count") {
		p.Count = f.count
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	p.Locale = locale.Resolve(p.Locale).Code()
	return p, nil
}
