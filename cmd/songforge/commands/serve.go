package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the songforge HTTP API until interrupted.

Routes:
  GET  /health
  GET  /api/locales
  GET  /api/songs?page=&lang=&seed=&likes=&count=
  GET  /api/songs/:index
  GET  /api/songs/:index/audio
  GET  /api/songs/:index/cover
  POST /api/songs/export

Examples:
  songforge serve
  songforge serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := newRenderer(cfg)
		if err != nil {
			return err
		}
		enricher, err := newEnricher(ctx, cfg, st)
		if err != nil {
			return err
		}
		srv, err := server.New(server.Options{
			Generator:        catalog.NewGenerator(nil),
			Store:            st,
			Renderer:         r,
			Workers:          cfg.Audio.Workers,
			Enricher:         enricher,
			BackgroundCovers: cfg.Server.BackgroundCovers,
			MaxCount:         cfg.Server.MaxCount,
			AllowOrigin:      cfg.Server.AllowOrigin,
		})
		if err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
