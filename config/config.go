package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Pull      PullConfig      `mapstructure:"pull"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SourceConfig holds WooCommerce REST API connection configuration
type SourceConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	ConsumerKey       string        `mapstructure:"consumer_key"`
	ConsumerSecret    string        `mapstructure:"consumer_secret"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries"`
	PageSize          int           `mapstructure:"page_size"`
}

// FeedConfig holds the feed defaults and merchant metadata applied to every
// row unless a product carries an override.
type FeedConfig struct {
	Format                string `mapstructure:"format"`
	Currency              string `mapstructure:"currency"`
	WeightUnit            string `mapstructure:"weight_unit"`
	DimensionUnit         string `mapstructure:"dimension_unit"`
	EnableSearchDefault   string `mapstructure:"enable_search_default"`
	EnableCheckoutDefault string `mapstructure:"enable_checkout_default"`
	SellerName            string `mapstructure:"seller_name"`
	SellerURL             string `mapstructure:"seller_url"`
	PrivacyURL            string `mapstructure:"privacy_url"`
	TOSURL                string `mapstructure:"tos_url"`
	ReturnsURL            string `mapstructure:"returns_url"`
	ReturnWindow          int    `mapstructure:"return_window"`
}

// PullConfig gates the authenticated machine-pull endpoint
type PullConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AccessToken string `mapstructure:"access_token"`
}

// DeliveryConfig holds the scheduled outbound push configuration
type DeliveryConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	EndpointURL string        `mapstructure:"endpoint_url"`
	AuthToken   string        `mapstructure:"auth_token"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional, log but don't fail
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("FEED_SERVICE")

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads a .env file from the usual locations
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	// Source
	v.BindEnv("source.base_url", "WOOCOMMERCE_URL")
	v.BindEnv("source.consumer_key", "WOOCOMMERCE_CONSUMER_KEY")
	v.BindEnv("source.consumer_secret", "WOOCOMMERCE_CONSUMER_SECRET")

	// Pull / delivery secrets
	v.BindEnv("pull.access_token", "PULL_ACCESS_TOKEN")
	v.BindEnv("delivery.endpoint_url", "DELIVERY_ENDPOINT_URL")
	v.BindEnv("delivery.auth_token", "DELIVERY_AUTH_TOKEN")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")

	// Telemetry
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	// Source defaults
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.requests_per_second", 5)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.page_size", 100)

	// Feed defaults
	v.SetDefault("feed.format", "json")
	v.SetDefault("feed.currency", "USD")
	v.SetDefault("feed.weight_unit", "kg")
	v.SetDefault("feed.dimension_unit", "cm")
	v.SetDefault("feed.enable_search_default", "true")
	v.SetDefault("feed.enable_checkout_default", "false")
	v.SetDefault("feed.return_window", 0)

	// Pull defaults
	v.SetDefault("pull.enabled", false)

	// Delivery defaults
	v.SetDefault("delivery.enabled", false)
	v.SetDefault("delivery.interval", 15*time.Minute)
	v.SetDefault("delivery.timeout", 30*time.Second)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst_size", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "opentelemetry-collector:4317")
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
