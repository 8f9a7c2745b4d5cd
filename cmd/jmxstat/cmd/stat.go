package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"jmxstat/internal/client/jolokia"
	"jmxstat/internal/config"
	"jmxstat/internal/options"
	"jmxstat/internal/report"
	"jmxstat/internal/service"
)

// runStat resolves the arguments, connects to the endpoint and polls until
// the session ends. It returns the process exit status.
func runStat(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if isHelp(args) {
		printUsage(stderr, "")
		return service.ExitUsage
	}

	// Step 1: Resolve arguments
	opts := options.Parse(args)
	if !opts.Valid() {
		printUsage(stderr, opts.ParseError)
		return service.ExitUsage
	}

	// Step 2: Load configuration
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return service.ExitUsage
	}

	// Step 3: Initialize logger. --log-level overrides the config file.
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger := setupLogger(stderr, level, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", opts.ConfigPath).
		Str("log_level", level).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")

	// Step 4: Merge attributes from the attributes file
	if cfg.Output.AttributesFile != "" {
		tokens, err := config.LoadAttributeTokens(cfg.Output.AttributesFile)
		if err != nil {
			fmt.Fprintf(stderr, "failed to load attributes: %v\n", err)
			return service.ExitUsage
		}
		refs, err := options.ParseAttributeTokens(tokens)
		if err != nil {
			printUsage(stderr, err.Error())
			return service.ExitUsage
		}
		opts = opts.WithAttributes(refs)
		logger.Debug().
			Str("path", cfg.Output.AttributesFile).
			Int("count", len(refs)).
			Msg("attributes file loaded")
	}

	// Step 5: Metrics
	registry := prometheus.NewRegistry()
	metrics := service.NewMetrics(registry)
	if cfg.Metrics.Listen != "" {
		stop := serveMetrics(cfg.Metrics.Listen, registry, logger)
		defer stop()
	}

	// Step 6: Run the session until it ends or a signal arrives
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session := service.NewSession(
		opts,
		jolokia.NewConnector(&cfg.Jolokia, logger),
		report.NewWriter(stdout, cfg.Output.Location()),
		logger,
		service.WithRetryPolicy(service.RetryPolicy{
			MaxRetries: cfg.Session.MaxRetries,
			MaxBackoff: cfg.Session.MaxBackoff,
		}),
		service.WithMetrics(metrics),
	)

	err = session.Run(ctx)
	switch {
	case err == nil:
		return service.ExitOK
	case errors.Is(err, context.Canceled):
		logger.Debug().Msg("interrupted")
		return service.ExitOK
	}

	status := service.ExitStatus(err)
	logger.Error().Err(err).Int("status", status).Msg("session terminated")
	fmt.Fprintln(stderr, err)
	return status
}

// serveMetrics exposes the registry at /metrics on addr. The returned
// function shuts the server down.
func serveMetrics(addr string, registry *prometheus.Registry, logger zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Str("listen", addr).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("listen", addr).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}

// setupLogger configures the zerolog logger. Logs go to w so they never
// mix with the samples on stdout.
func setupLogger(w io.Writer, level string, format string) zerolog.Logger {
	// Set log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = w
	} else {
		// Console format - human-readable output for terminals
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).Level(logLevel).With().Timestamp().Logger()
}
