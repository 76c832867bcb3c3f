package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/storefeed/feed-service/config"
	"github.com/storefeed/feed-service/internal/feed"
	"github.com/storefeed/feed-service/internal/source/woocommerce"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "feed-service",
	Short: "Feed Service CLI - Product feed generation tool",
	Long: `A CLI tool for building, validating, and delivering AI shopping product feeds
from a WooCommerce store. Feeds can be emitted as JSON, CSV, TSV, or XML.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()

	cmdNeedsStore := cmd.Name() == "build" || cmd.Name() == "validate" || cmd.Name() == "push"
	if cmdNeedsStore {
		if cfg == nil {
			return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
		}
		if cfg.Source.BaseURL == "" {
			return fmt.Errorf("WOOCOMMERCE_URL not set")
		}
	}

	return nil
}

// newGenerator builds the feed generator against the configured store
func newGenerator() *feed.Generator {
	src := woocommerce.New(woocommerce.ClientConfig{
		BaseURL:           cfg.Source.BaseURL,
		ConsumerKey:       cfg.Source.ConsumerKey,
		ConsumerSecret:    cfg.Source.ConsumerSecret,
		Timeout:           cfg.Source.Timeout,
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
		MaxRetries:        cfg.Source.MaxRetries,
	}, cfg.Source.PageSize)

	settings := feed.Settings{
		Currency:              cfg.Feed.Currency,
		WeightUnit:            cfg.Feed.WeightUnit,
		DimensionUnit:         cfg.Feed.DimensionUnit,
		EnableSearchDefault:   cfg.Feed.EnableSearchDefault,
		EnableCheckoutDefault: cfg.Feed.EnableCheckoutDefault,
		SellerName:            cfg.Feed.SellerName,
		SellerURL:             cfg.Feed.SellerURL,
		PrivacyURL:            cfg.Feed.PrivacyURL,
		TOSURL:                cfg.Feed.TOSURL,
		ReturnsURL:            cfg.Feed.ReturnsURL,
		ReturnWindow:          cfg.Feed.ReturnWindow,
	}
	return feed.NewGenerator(src, feed.NewMapper(src), settings, *logger)
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Always use console format for CLI
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
