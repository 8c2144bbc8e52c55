// Package main provides the newslens CLI: an HTTP API server plus one-shot
// search and trend commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newslens",
		Short: "News search, enrichment and trend analysis",
		Long: `newslens gathers news articles for a set of search terms from several sources,
geolocates, rates, classifies and scores them, and analyzes keyword trends over time.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Path to config.json (flags override file values)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Print detailed debug information")
	root.PersistentFlags().Bool("use-browser", false, "Render pages with headless Chrome when static fetches come back short")

	root.AddCommand(newServeCmd(), newSearchCmd(), newTrendCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
