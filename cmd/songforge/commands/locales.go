package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/songforge/pkg/cli"
	"github.com/haivivi/songforge/pkg/locale"
)

type localeInfo struct {
	Code    string `json:"code" yaml:"code"`
	Tag     string `json:"tag" yaml:"tag"`
	Default bool   `json:"default" yaml:"default"`
}

type localeList []localeInfo

func (l localeList) Headers() []string { return []string{"CODE", "TAG", "DEFAULT"} }

func (l localeList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, info := range l {
		def := ""
		if info.Default {
			def = "*"
		}
		rows[i] = []string{info.Code, info.Tag, def}
	}
	return rows
}

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List supported locales",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var list localeList
		for _, l := range locale.Supported() {
			list = append(list, localeInfo{Code: l.Code(), Tag: l.Tag(), Default: l == locale.Default})
		}
		return cli.Output(list, outputOptions())
	},
}

func init() {
	rootCmd.AddCommand(localesCmd)
}
