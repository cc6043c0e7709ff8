package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/you/go-dish-demand/internal/analysis"
	"github.com/you/go-dish-demand/internal/auth"
	"github.com/you/go-dish-demand/internal/catalog"
	"github.com/you/go-dish-demand/internal/config"
	"github.com/you/go-dish-demand/internal/httpx"
	"github.com/you/go-dish-demand/internal/logging"
	"github.com/you/go-dish-demand/internal/service"
	"github.com/you/go-dish-demand/internal/store"
)

func main() {

	// Loading config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// Menu catalog, built-in unless a YAML file is configured
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			slog.Error("failed to load catalog", "err", err, "path", cfg.CatalogFile)
			os.Exit(1)
		}
	}

	sim, err := service.NewHistorySimulator(service.SimulatorConfig{
		MinUnits: cfg.SalesMin,
		MaxUnits: cfg.SalesMax,
		Seed:     cfg.HistorySeed,
	})
	if err != nil {
		slog.Error("failed to create simulator", "err", err)
		os.Exit(1)
	}

	// Snapshot store: SQLite when a DSN is set, memory otherwise
	var snapshots service.HistoryStore = store.NewMemory()
	if cfg.StorageDSN != "" {
		db, err := store.NewSQLite(cfg.StorageDSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.StorageDSN)
			os.Exit(1)
		}
		defer db.Close()
		snapshots = db
	}

	mode, err := service.ParseHistoryMode(cfg.HistoryMode)
	if err != nil {
		slog.Error("bad history mode", "err", err)
		os.Exit(1)
	}

	// Creating services
	demandSvc := service.NewDemandService(sim, snapshots, service.DemandConfig{
		Years:      cfg.HistoryYears,
		Dishes:     cat.Names(),
		Mode:       mode,
		EpochTTL:   cfg.HistoryTTL,
		TargetYear: cfg.TargetYear,
	})
	recognizer := analysis.NewLabelRecognizer(cat)

	mux := httpx.NewMux(demandSvc, recognizer, httpx.Options{
		StreamEvery:    cfg.StreamEvery,
		UploadMaxBytes: cfg.UploadMaxBytes,
		Origins:        cfg.CORSOrigins,
	})

	// Public: login to get JWT
	mux.HandleFunc("POST /auth/login", auth.LoginHandler(cfg))

	// handler chain: CORS (answers preflights) -> rate limit -> JWT -> routes
	var root http.Handler = auth.JWTMiddleware(mux, cfg)
	root = httpx.RateLimit(root, cfg.RateLimitRPS, cfg.RateLimitBurst)
	root = httpx.CORS(root, cfg.CORSOrigins)

	// Creation of HTTP server
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           root,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("dish demand backend starting",
		"addr", cfg.Addr,
		"dishes", len(cat.Names()),
		"years", cfg.HistoryYears,
		"mode", mode,
		"target_year", demandSvc.TargetYear(),
		"auth", cfg.AuthEnabled(),
		"storage", cfg.StorageDSN,
	)

	// Running http server on a secondary goroutine
	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			slog.Info("TLS enabled")
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		slog.Error("server stopped", "err", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("shutdown", "err", err)
	}
	slog.Info("bye")
}
