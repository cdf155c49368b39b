// insightd runs periodic behavioral analysis over the observation store and
// publishes alerts, risks and insights for each tracked subject.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aulanota/insight/pkg/analytics"
	"github.com/aulanota/insight/pkg/cache"
	"github.com/aulanota/insight/pkg/cached"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
	"github.com/aulanota/insight/pkg/metrics"
	"github.com/aulanota/insight/pkg/mqtt"
	"github.com/aulanota/insight/pkg/patterns"
	"github.com/aulanota/insight/pkg/pidfile"
	"github.com/aulanota/insight/pkg/store"
)

var (
	version = "1.0.0"

	configPath  = flag.String("config", "/etc/insight/config.yaml", "path to configuration file")
	pidPath     = flag.String("pidfile", "", "write a PID file at this path")
	logLevel    = flag.String("log-level", "", "override configured log level")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("insightd %s\n", version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "insightd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level := cfg.Daemon.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logger := logx.NewLogger(level, "insightd")
	logger.Info("Starting insightd", "version", version, "config", *configPath)

	if *pidPath != "" {
		pf := pidfile.New(*pidPath)
		if err := pf.Create(); err != nil {
			return err
		}
		defer func() {
			if err := pf.Remove(); err != nil {
				logger.Warn("Failed to remove PID file", "path", pf.Path(), "error", err)
			}
		}()
	}

	provider := config.NewProvider(cfg, logger.WithComponent("config"))
	provider.Subscribe(func(c config.Config) {
		logger.SetLevel(c.Daemon.LogLevel)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := config.NewWatcher(*configPath, provider, logger.WithComponent("config"))
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("Configuration watcher stopped", "error", err)
		}
	}()

	db, err := store.Open(cfg.Daemon.DBPath, logger.WithComponent("store"))
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	cacheStore := cache.NewStore(logger.WithComponent("cache"))
	patternEngine := patterns.NewEngine(provider, logger.WithComponent("patterns"))
	defer patternEngine.Close()
	trendEngine := analytics.NewEngine(provider, logger.WithComponent("analytics"))
	defer trendEngine.Close()

	analyzer := cached.NewAnalyzer(cacheStore, patternEngine, trendEngine, provider,
		logger.WithComponent("cached"), m)
	defer analyzer.Close()

	publisher := mqtt.NewPublisher(cfg.MQTT, logger.WithComponent("mqtt"))
	if err := publisher.Connect(); err != nil {
		// Analysis still runs locally without a broker
		logger.Warn("MQTT connection failed, continuing without publishing", "error", err)
	}
	defer publisher.Disconnect()

	metricsServer := &http.Server{
		Addr:    cfg.Daemon.MetricsAddr,
		Handler: m.Handler(),
	}
	go func() {
		logger.Info("Metrics listener started", "addr", cfg.Daemon.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics listener failed", "error", err)
		}
	}()
	defer metricsServer.Close()

	runner := &analysisRunner{
		provider:  provider,
		store:     db,
		analyzer:  analyzer,
		engine:    trendEngine,
		publisher: publisher,
		logger:    logger.WithComponent("runner"),
		perf:      logx.NewPerformanceLogger(logger.WithComponent("perf")),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interval := provider.Get().Daemon.AnalysisInterval.Std()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runner.runOnce(ctx)

	for {
		select {
		case sig := <-sigCh:
			logger.Info("Shutting down", "signal", sig.String())
			runner.perf.LogSummary()
			return nil
		case <-ticker.C:
			runner.runOnce(ctx)
			// Pick up live interval changes between cycles
			if next := runner.provider.Get().Daemon.AnalysisInterval.Std(); next != interval && next > 0 {
				interval = next
				ticker.Reset(interval)
				logger.Info("Analysis interval updated", "interval", interval.String())
			}
		}
	}
}
