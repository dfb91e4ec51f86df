package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/songforge/cmd/songforge/internal/config"
	"github.com/haivivi/songforge/pkg/cli"
)

var (
	// Global flags
	verbose      bool
	formatOutput string
	jqExpr       string
	outputFile   string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "songforge",
	Short: "Deterministic procedural song generator",
	Long: `songforge - generate reproducible fake song catalogs with audio.

Every record is derived from (seed, page, index), so the same request
always yields the same titles, artists, likes and melody.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/songforge/
  Linux:   ~/.config/songforge/
  Windows: %AppData%/songforge/

Examples:
  # Ten German songs from page 2
  songforge generate --lang de --page 2

  # Render song 3 as WAV
  songforge render --index 3 -o song3.wav

  # Export a page to S3
  songforge export --seed 42 --dest s3://songs/exports

  # Run the HTTP API
  songforge serve --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "yaml", "output format (yaml, json, table)")
	rootCmd.PersistentFlags().StringVar(&jqExpr, "jq", "", "filter output with a jq expression")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file path")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	globalConfig, configLoadErr = nil, nil
	cfg, err := config.Load()
	if err != nil {
		// Commands that need config report it through GetConfig, so
		// 'songforge version' still works with a broken file.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// outputOptions returns the options for printing structured results. The
// -o flag is left to commands that write binary data.
func outputOptions() cli.OutputOptions {
	return cli.OutputOptions{
		Format: cli.OutputFormat(formatOutput),
		JQ:     jqExpr,
	}
}
