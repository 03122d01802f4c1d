package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"review-scraper/pkg/browser"
	"review-scraper/pkg/config"
	"review-scraper/pkg/fetch"
	"review-scraper/pkg/metrics"
	"review-scraper/pkg/server"
	"review-scraper/pkg/storage"
)

func main() {
	// --- Early Initialization & Flags ---
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel) // Default level

	configFileFlag := flag.String("config", "config.yaml", "Path to YAML config file")
	logLevelFlag := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	warmFlag := flag.Bool("warm", true, "Launch the browser at startup instead of on first request")
	flag.Parse()

	// --- Logger Configuration ---
	level, err := logrus.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", *logLevelFlag, err)
	} else {
		log.SetLevel(level)
	}

	// --- Load & Validate Configuration ---
	log.Infof("Loading configuration from %s", *configFileFlag)
	cfg, err := config.Load(*configFileFlag)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warnf("Config file '%s' not found, running with defaults", *configFileFlag)
			cfg = &config.Config{}
		} else {
			log.Fatalf("Load config file '%s' error: %v", *configFileFlag, err)
		}
	}
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	log.Infof("Effective config: listen:%s db:%s pages:%d locales:%d",
		cfg.ListenAddr, cfg.DatabasePath, cfg.Browser.MaxConcurrentPages, len(cfg.Locales))

	// --- Metrics Listener (Optional) ---
	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
			log.Infof("Starting metrics server on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Errorf("Metrics server failed: %v", err)
			}
		}()
	}

	// --- Initialize Components ---
	store, err := storage.Open(cfg.DatabasePath, log.WithField("component", "storage"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	manager := browser.NewManager(cfg.Browser, m, log.WithField("component", "browser"))
	fetcher := fetch.NewFetcher(manager, cfg.Fetch, cfg.Locales, m, log.WithField("component", "fetch"))
	srv := server.New(fetcher, store, manager.Capacity(), log.WithField("component", "server"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *warmFlag {
		log.Info("Warming up browser session...")
		if err := manager.Start(ctx); err != nil {
			// Not fatal: the profile may still be usable after a retry.
			log.Warnf("Browser warm-up failed, will retry on first request: %v", err)
		}
	}

	// --- Signal Handling ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		if err := srv.Shutdown(); err != nil {
			log.Errorf("Server shutdown error: %v", err)
		}
		cancel()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	// --- Serve ---
	log.Infof("Listening on %s", cfg.ListenAddr)
	if err := srv.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	manager.Reset(context.Background())
	log.Info("Shutdown complete.")
}
