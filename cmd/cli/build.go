package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storefeed/feed-service/internal/feed"
)

var (
	buildFormat string
	buildOutput string
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the product feed",
	Long: `Build the full product feed from the configured WooCommerce store and write it
to stdout or a file. Variable products are expanded into one row per variation.`,
	Example: `  feed-service build
  feed-service build --format csv
  feed-service build --format xml --output feed.xml`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildFormat, "format", "", "Output format: json, csv, tsv, or xml (defaults to configured format)")
	buildCmd.Flags().StringVar(&buildOutput, "output", "", "Write the feed to a file instead of stdout")
}

func runBuild(cmd *cobra.Command, args []string) error {
	gen := newGenerator()

	format := buildFormat
	if format == "" {
		format = cfg.Feed.Format
	}

	rows := gen.BuildFeed(context.Background())
	payload, _ := feed.Serialize(rows, format)

	if buildOutput == "" {
		fmt.Println(string(payload))
		return nil
	}

	if err := os.WriteFile(buildOutput, payload, 0o644); err != nil {
		return fmt.Errorf("writing feed to %s: %w", buildOutput, err)
	}
	logger.Info().Str("path", buildOutput).Int("rows", len(rows)).Msg("Feed written")
	return nil
}
