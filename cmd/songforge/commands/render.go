package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/songforge/pkg/audio/songs"
	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/cli"
)

var (
	renderFlags paramFlags
	renderIndex int
	renderNotes string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one song's melody to an audio file",
	Long: `Render the melody of the song at --index, or an explicit list of
notes, and write the audio to -o.

The codec and sample rate come from the audio section of the config file.

Examples:
  songforge render --index 3 -o song3.wav
  songforge render --index 11 --seed 42 --lang de -o song.wav
  songforge render --notes C4,E4,G4,C4 -o chord.wav`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFile == "" {
			return fmt.Errorf("output file is required (-o)")
		}
		if renderNotes == "" && !cmd.Flags().Changed("index") {
			return fmt.Errorf("one of --index or --notes is required")
		}
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		r, err := newRenderer(cfg)
		if err != nil {
			return err
		}

		var melody []songs.Note
		if renderNotes != "" {
			melody, err = songs.Parse(strings.Split(renderNotes, ","))
			if err != nil {
				return err
			}
		} else {
			if renderIndex < 1 {
				return fmt.Errorf("index must be at least 1, got %d", renderIndex)
			}
			p, err := renderFlags.params(cmd.Flags())
			if err != nil {
				return err
			}
			melody = catalog.NewGenerator(nil).Song(p, renderIndex).Melody()
		}

		audio, err := r.Render(melody)
		if err != nil {
			return err
		}
		if err := cli.OutputBytes(audio.Data, outputFile); err != nil {
			return err
		}
		cli.PrintSuccess("Audio saved to %s (%s, %s)", outputFile, audio.MediaType, cli.FormatBytes(int64(len(audio.Data))))
		return nil
	},
}

func init() {
	renderFlags.register(renderCmd.Flags())
	renderCmd.Flags().IntVar(&renderIndex, "index", 0, "global song index, starting at 1")
	renderCmd.Flags().StringVar(&renderNotes, "notes", "", "comma separated notes, e.g. C4,E4,G4")
	rootCmd.AddCommand(renderCmd)
}
