package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/cli"
	"github.com/haivivi/songforge/pkg/export"
	"github.com/haivivi/songforge/pkg/storage"
)

var (
	exportFlags paramFlags
	exportDest  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a page of songs into a zip archive",
	Long: `Render every song of a page and pack the clips into one zip archive.

The archive is named songs-<page>-<seed>.zip and stored under --dest, which
may be a local directory or an s3://bucket/prefix URI. With -o the archive
is written to that file instead.

Examples:
  songforge export --page 2
  songforge export --seed 42 --dest s3://songs/exports
  songforge export --lang de -o german.zip`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		p, err := exportFlags.params(cmd.Flags())
		if err != nil {
			return err
		}
		r, err := newRenderer(cfg)
		if err != nil {
			return err
		}
		batch := catalog.NewGenerator(nil).Batch(p)
		exp := export.New(r, cfg.Audio.Workers)

		if outputFile != "" {
			data, err := exp.Export(cmd.Context(), batch)
			if err != nil {
				return err
			}
			if err := cli.OutputBytes(data, outputFile); err != nil {
				return err
			}
			cli.PrintSuccess("Exported %d songs to %s (%s)", len(batch), outputFile, cli.FormatBytes(int64(len(data))))
			return nil
		}

		dest := cfg.Export.Dest
		if cmd.Flags().Changed("dest") {
			dest = exportDest
		}
		fs, err := storage.Open(dest, cfg.Export.S3)
		if err != nil {
			return err
		}
		loc, size, err := exp.ExportTo(cmd.Context(), fs, export.FileName(p), batch)
		if err != nil {
			return err
		}
		cli.PrintSuccess("Exported %d songs to %s (%s)", len(batch), loc, cli.FormatBytes(int64(size)))
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd.Flags())
	exportCmd.Flags().StringVar(&exportDest, "dest", "", "destination directory or s3://bucket/prefix (default from config)")
	rootCmd.AddCommand(exportCmd)
}
