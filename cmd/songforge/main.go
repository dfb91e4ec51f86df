// Package main is the entry point for the songforge CLI.
//
// Usage:
//
//	songforge [flags] <command> [subcommand] [args]
//
// Commands:
//
//	generate   - Generate a page of songs
//	render     - Render one song's melody to an audio file
//	export     - Render a page of songs into a zip archive
//	serve      - Run the HTTP API
//	locales    - List supported locales
//	config     - Show or initialize the configuration file
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/songforge/cmd/songforge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
