package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/storefeed/feed-service/config"
	"github.com/storefeed/feed-service/internal/delivery"
	"github.com/storefeed/feed-service/internal/feed"
	"github.com/storefeed/feed-service/internal/handlers"
	"github.com/storefeed/feed-service/internal/middleware"
	"github.com/storefeed/feed-service/internal/source/woocommerce"
	"github.com/storefeed/feed-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting feed service")

	if cfg.Source.BaseURL == "" {
		logger.Fatal().Msg("WOOCOMMERCE_URL not set")
	}

	ctx := context.Background()
	cleanup, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}
	defer cleanup(ctx)

	src := woocommerce.New(woocommerce.ClientConfig{
		BaseURL:           cfg.Source.BaseURL,
		ConsumerKey:       cfg.Source.ConsumerKey,
		ConsumerSecret:    cfg.Source.ConsumerSecret,
		Timeout:           cfg.Source.Timeout,
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
		MaxRetries:        cfg.Source.MaxRetries,
	}, cfg.Source.PageSize)

	settings := settingsFromConfig(cfg.Feed)
	generator := feed.NewGenerator(src, feed.NewMapper(src), settings, *logger)

	handlers.InitFeed(generator, cfg.Feed.Format)
	handlers.InitHealth(src)

	var scheduler *cron.Cron
	if cfg.Delivery.Enabled {
		pusher := delivery.NewPusher(delivery.Config{
			EndpointURL: cfg.Delivery.EndpointURL,
			AuthToken:   cfg.Delivery.AuthToken,
			Format:      cfg.Feed.Format,
			Timeout:     cfg.Delivery.Timeout,
		}, generator, *logger)

		scheduler = cron.New()
		spec := fmt.Sprintf("@every %s", cfg.Delivery.Interval)
		if _, err := scheduler.AddFunc(spec, func() {
			if err := pusher.Push(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Scheduled feed push failed")
			}
		}); err != nil {
			logger.Fatal().Err(err).Str("spec", spec).Msg("Failed to schedule feed delivery")
		}
		scheduler.Start()
		logger.Info().Dur("interval", cfg.Delivery.Interval).Msg("Feed delivery scheduled")
	}

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	feedGroup := router.Group("/feed")
	feedGroup.Use(middleware.RateLimitMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
	}))
	if cfg.Pull.Enabled {
		feedGroup.Use(middleware.BearerAuth(cfg.Pull.AccessToken))
	}
	{
		feedGroup.GET("", handlers.GetFeed)
		feedGroup.GET("/products/:id", handlers.PreviewProduct)
		feedGroup.POST("/validate", handlers.ValidateRow)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func settingsFromConfig(cfg config.FeedConfig) feed.Settings {
	return feed.Settings{
		Currency:              cfg.Currency,
		WeightUnit:            cfg.WeightUnit,
		DimensionUnit:         cfg.DimensionUnit,
		EnableSearchDefault:   cfg.EnableSearchDefault,
		EnableCheckoutDefault: cfg.EnableCheckoutDefault,
		SellerName:            cfg.SellerName,
		SellerURL:             cfg.SellerURL,
		PrivacyURL:            cfg.PrivacyURL,
		TOSURL:                cfg.TOSURL,
		ReturnsURL:            cfg.ReturnsURL,
		ReturnWindow:          cfg.ReturnWindow,
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "feed-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
