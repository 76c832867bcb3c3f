package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefeed/feed-service/internal/delivery"
)

var pushEndpoint string

// pushCmd represents the push command
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Build the feed and push it to the delivery endpoint",
	Long: `Build the full product feed and deliver it to the configured endpoint in a single
shot. Useful for manual re-delivery and for cron-less deployments.`,
	Example: `  feed-service push
  feed-service push --endpoint https://ingest.example.com/feeds`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushEndpoint, "endpoint", "", "Delivery endpoint URL (defaults to configured endpoint)")
}

func runPush(cmd *cobra.Command, args []string) error {
	endpoint := pushEndpoint
	if endpoint == "" {
		endpoint = cfg.Delivery.EndpointURL
	}
	if endpoint == "" {
		return fmt.Errorf("no delivery endpoint configured, set DELIVERY_ENDPOINT_URL or use --endpoint")
	}

	pusher := delivery.NewPusher(delivery.Config{
		EndpointURL: endpoint,
		AuthToken:   cfg.Delivery.AuthToken,
		Format:      cfg.Feed.Format,
		Timeout:     cfg.Delivery.Timeout,
	}, newGenerator(), *logger)

	return pusher.Push(context.Background())
}
