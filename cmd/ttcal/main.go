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

	"github.com/robfig/cron/v3"

	"ttcal/internal/config"
	appLog "ttcal/internal/log"
	"ttcal/internal/registry"
	"ttcal/internal/web"
)

// flagConfig holds CLI flag values before config loading.
type flagConfig struct {
	configPath  string
	listen      string
	registryDir string
	logLevel    string
	indexOnly   bool
}

func main() {
	flags := parseFlags()
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
	appLog.Info("ttcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides config file values if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.registryDir != "" {
		conf.RegistryDir = flags.registryDir
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"registry_url", conf.RegistryURL,
		"registry_dir", conf.RegistryDir,
		"default_weeks", conf.DefaultWeeks,
		"max_weeks", conf.MaxWeeks,
		"index_refresh", conf.IndexRefresh,
	)

	if flags.indexOnly {
		if conf.RegistryDir == "" {
			appLog.Error("cannot build index", errors.New("registry_dir is not set"))
			os.Exit(1)
		}
		if _, err := registry.BuildIndex(conf.RegistryDir); err != nil {
			appLog.Error("index build failed", err, "root", conf.RegistryDir)
			os.Exit(1)
		}
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	var src registry.Source
	if conf.RegistryDir != "" {
		src = registry.NewDirSource(conf.RegistryDir)

		// Local tree: keep its index files fresh.
		if _, err := registry.BuildIndex(conf.RegistryDir); err != nil {
			appLog.Error("initial index build failed", err, "root", conf.RegistryDir)
		}
		c := cron.New()
		if _, err := c.AddFunc(conf.IndexRefresh, func() {
			if _, err := registry.BuildIndex(conf.RegistryDir); err != nil {
				appLog.Error("scheduled index build failed", err, "root", conf.RegistryDir)
			}
		}); err != nil {
			appLog.Error("invalid index refresh schedule", err, "schedule", conf.IndexRefresh)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
	} else {
		src = registry.NewHTTPSource(conf.RegistryURL, conf.CacheDir)
	}

	server := web.NewServer(conf, src)
	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP server shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}

	appLog.Info("ttcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/ttcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.registryDir, "registry-dir", "", "Serve documents from a local registry tree (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info or error")
	flag.BoolVar(&cfg.indexOnly, "build-index", false, "Rebuild index files for the local registry tree and exit")

	flag.Parse()

	return cfg
}
