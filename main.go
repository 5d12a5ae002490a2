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

	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/api"
	"github.com/serroba/pdfcraft/internal/config"
	"github.com/serroba/pdfcraft/internal/export"
	"github.com/serroba/pdfcraft/internal/logging"
	"github.com/serroba/pdfcraft/internal/session"
	"github.com/serroba/pdfcraft/internal/stats"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/serroba/pdfcraft/internal/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a TOML config file")
	addr := flag.String("addr", "", "listen address (overrides the config file)")
	flag.Parse()

	loader := config.NewLoader(*configPath)

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)

		return 1
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configure logging: %v\n", err)

		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		watchConfig(ctx, loader, logger)

		defer func() { _ = loader.Close() }()
	}

	store, permStore, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("open storage")

		return 1
	}
	defer closeStore()

	view := session.DefaultView()
	view.FontFamily = cfg.Editor.FontFamily
	view.FontSize = cfg.Editor.FontSize
	view.Theme = cfg.Editor.Theme
	view.PageSize = cfg.Editor.PageSize

	if err := view.Validate(); err != nil {
		logger.WithError(err).Error("invalid editor defaults")

		return 1
	}

	var printer export.Printer

	if cfg.PDF.Enabled {
		chrome, err := export.NewChromePrinter(export.ChromeOptions{
			ExecPath:  cfg.PDF.ChromePath,
			NoSandbox: cfg.PDF.NoSandbox,
			Timeout:   cfg.PDF.Timeout.Duration,
		})
		if err != nil {
			logger.WithError(err).Error("start chrome")

			return 1
		}
		defer func() { _ = chrome.Close() }()

		printer = chrome
	}

	var autosave *storage.AutosavePolicy
	if cfg.Storage.AutosaveEvery > 0 {
		autosave = storage.NewAutosavePolicy(cfg.Storage.AutosaveEvery)
	}

	hub := ws.NewHub()

	manager := session.NewManager(session.ManagerConfig{
		Store:        store,
		PermStore:    permStore,
		Hub:          hub,
		Autosave:     autosave,
		Printer:      printer,
		Stats:        stats.NewCalculator(cfg.Editor.CharsPerPage),
		HistoryLimit: cfg.Editor.HistoryLimit,
		View:         &view,
		IdleTimeout:  cfg.Session.IdleTimeout.Duration,
		Logger:       logger,
	})

	server := api.NewServer(api.ServerConfig{
		Manager:        manager,
		Store:          store,
		PermStore:      permStore,
		Hub:            hub,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Duration,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    cfg.Server.Addr,
			"storage": cfg.Storage.Backend,
			"pdf":     cfg.PDF.Enabled,
		}).Info("starting server")

		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")

			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	code := 0

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown http server")

		code = 1
	}

	if err := manager.CloseAll(shutdownCtx); err != nil {
		logger.WithError(err).Error("save open documents")

		code = 1
	}

	return code
}

// watchConfig applies logging changes from the config file while running.
// Settings that shape long-lived components need a restart.
func watchConfig(ctx context.Context, loader *config.Loader, logger *logrus.Logger) {
	loader.OnChange(func(cfg *config.Config) {
		if err := logging.Apply(logger, cfg.Logging); err != nil {
			logger.WithError(err).Warn("apply reloaded logging config")

			return
		}

		logger.Info("configuration reloaded")
	})

	if err := loader.Watch(ctx); err != nil {
		logger.WithError(err).Warn("config file will not be watched")

		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-loader.Errors():
				logger.WithError(err).Warn("config reload failed, keeping previous config")
			}
		}
	}()
}

// openStore opens the configured backend together with an access list
// store kept in the same place, and returns a function that releases both.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, acl.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}

		perms, err := acl.NewSQLStore(store.DB())
		if err != nil {
			_ = store.Close()

			return nil, nil, nil, err
		}

		return store, perms, func() { _ = store.Close() }, nil
	case config.BackendRedis:
		store, err := storage.OpenRedis(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, nil, err
		}

		perms := acl.NewRedisStore(store.Client(), store.Prefix())

		return store, perms, func() { _ = store.Close() }, nil
	default:
		return storage.NewMemoryStore(), acl.NewMemoryStore(), func() {}, nil
	}
}
