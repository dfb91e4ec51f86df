package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/cli"
	"github.com/haivivi/songforge/pkg/store"
)

var generateFlags paramFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a page of songs",
	Long: `Generate one page of song records.

Parameters come from the defaults, then the request file (-f), then any
flag given explicitly.

Examples:
  songforge generate
  songforge generate --lang uk --seed 7 --count 20 --format table
  songforge generate -f page.yaml --jq '.[].title'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		p, err := generateFlags.params(cmd.Flags())
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		batch := catalog.NewGenerator(nil).Batch(p)
		for i, s := range batch {
			batch[i] = store.GetOrGenerate(cmd.Context(), st, s)
		}

		opts := outputOptions()
		opts.File = outputFile
		return cli.Output(songList(batch), opts)
	},
}

func init() {
	generateFlags.register(generateCmd.Flags())
	rootCmd.AddCommand(generateCmd)
}

// songList prints a batch as a table.
type songList []*catalog.Song

func (l songList) Headers() []string {
	return []string{"INDEX", "TITLE", "ARTIST", "ALBUM", "GENRE", "LIKES", "LENGTH"}
}

func (l songList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{
			strconv.Itoa(s.Index),
			s.Title,
			s.Artist,
			s.Album,
			s.Genre,
			strconv.Itoa(s.Likes),
			cli.FormatSeconds(s.Duration),
		}
	}
	return rows
}
