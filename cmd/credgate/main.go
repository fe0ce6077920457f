package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/credgate/credgate/pkg/apiserver"
	"github.com/credgate/credgate/pkg/classification"
	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/extract"
	"github.com/credgate/credgate/pkg/logo"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/observability/tracing"
	"github.com/credgate/credgate/pkg/pipeline"
	"github.com/credgate/credgate/pkg/search"
	"github.com/credgate/credgate/pkg/store"
	"github.com/credgate/credgate/pkg/verifier"
)

func main() {
	// Parse command-line flags
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to the configuration file")
		envFile     = flag.String("env-file", "", "Optional .env file loaded before configuration")
		watchConfig = flag.Bool("watch-config", true, "Reload configuration when the file changes")
	)
	flag.Parse()

	// Load the environment file before anything reads credentials from env.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load env file %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	// Initialize logging (zap) from environment.
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		// Fallback to stderr since logger initialization failed
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}

	logo.PrintCredGateLogo()

	// Check if config file exists
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logging.Fatalf("Config file not found: %s", *configPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize distributed tracing if enabled
	if cfg.Observability.Tracing.Enabled {
		tracingCfg := tracing.Config{
			Enabled:               cfg.Observability.Tracing.Enabled,
			ExporterType:          cfg.Observability.Tracing.Exporter.Type,
			ExporterEndpoint:      cfg.Observability.Tracing.Exporter.Endpoint,
			ExporterInsecure:      cfg.Observability.Tracing.Exporter.Insecure,
			SamplingType:          cfg.Observability.Tracing.Sampling.Type,
			SamplingRate:          cfg.Observability.Tracing.Sampling.Rate,
			ServiceName:           cfg.Observability.Tracing.Resource.ServiceName,
			ServiceVersion:        cfg.Observability.Tracing.Resource.ServiceVersion,
			DeploymentEnvironment: cfg.Observability.Tracing.Resource.DeploymentEnvironment,
		}
		if tracingErr := tracing.InitTracing(ctx, tracingCfg); tracingErr != nil {
			logging.Warnf("Failed to initialize tracing: %v", tracingErr)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := tracing.ShutdownTracing(shutdownCtx); shutdownErr != nil {
				logging.Errorf("Failed to shutdown tracing: %v", shutdownErr)
			}
		}()
	}

	// Initialize rolling decision statistics if enabled
	if cfg.Observability.RollingStats.Enabled {
		statsCfg := metrics.RollingStatsConfig{
			Enabled:        cfg.Observability.RollingStats.Enabled,
			TimeWindows:    cfg.Observability.RollingStats.TimeWindows,
			UpdateInterval: cfg.Observability.RollingStats.UpdateInterval,
		}
		if statsErr := metrics.InitializeRollingStats(statsCfg); statsErr != nil {
			logging.Warnf("Failed to initialize rolling statistics: %v", statsErr)
		}
	}

	// Start the Prometheus metrics listener
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsAddr := cfg.GetMetricsAddress()
		logging.Infof("Starting metrics server on %s", metricsAddr)
		if metricsErr := http.ListenAndServe(metricsAddr, metricsMux); metricsErr != nil {
			logging.Errorf("Metrics server error: %v", metricsErr)
		}
	}()

	// Watch the config file for hot reloads
	if *watchConfig {
		go config.WatchFile(ctx, *configPath)
	}

	// Classifier backend
	classifier, err := classification.NewFromConfig(cfg)
	if err != nil {
		logging.Fatalf("Failed to create classifier: %v", err)
	}

	// Search provider and source verifier
	provider, err := search.NewProviderFromConfig(cfg)
	if err != nil {
		logging.Fatalf("Failed to create search provider: %v", err)
	}
	sourceVerifier := verifier.New(provider, cfg)

	// Trusted-outlet feed snapshot, when enabled
	if cfg.Verifier.Feeds.Enabled {
		feeds := verifier.NewFeedSnapshot(cfg)
		if feedErr := feeds.Start(ctx, cfg.GetFeedRefreshSchedule()); feedErr != nil {
			logging.Warnf("Failed to start feed snapshot: %v", feedErr)
		} else {
			defer feeds.Stop()
			sourceVerifier = sourceVerifier.WithFeeds(feeds)
		}
	}

	// Verdict audit store. Persistence must never block the service, so a
	// failed backend degrades to the disabled store.
	verdictStore, err := store.NewStore(cfg.Store)
	if err != nil {
		logging.Warnf("Verdict store unavailable, persistence disabled: %v", err)
		verdictStore = store.NewDisabledStore()
	}
	defer func() {
		if closeErr := verdictStore.Close(); closeErr != nil {
			logging.Warnf("Failed to close verdict store: %v", closeErr)
		}
	}()

	sweeper, err := store.StartRetention(verdictStore, cfg.Store.Retention)
	if err != nil {
		logging.Warnf("Failed to start retention sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Decision engine
	engineOpts := pipeline.Options{
		Classifier:    classifier,
		Verifier:      sourceVerifier,
		Extractor:     extract.NewFromConfig(cfg),
		MinTextLength: cfg.GetMinTextLength(),
	}
	if verdictStore.IsEnabled() {
		engineOpts.Store = verdictStore
	}
	engine := pipeline.NewEngine(engineOpts)

	logging.Infof("Starting CredGate with config: %s (classifier=%s, store=%s)",
		*configPath, cfg.GetClassifierBackend(), cfg.GetStoreBackend())

	// API server
	server := apiserver.New(apiserver.Options{
		Decider:    engine,
		Store:      verdictStore,
		Config:     cfg,
		CacheStats: sourceVerifier.CacheStats,
	})
	if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatalf("API server error: %v", err)
	}
}
