package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/you/go-dish-demand/internal/catalog"
	"github.com/you/go-dish-demand/internal/config"
	"github.com/you/go-dish-demand/internal/logging"
	"github.com/you/go-dish-demand/internal/report"
	"github.com/you/go-dish-demand/internal/service"
	"github.com/you/go-dish-demand/internal/store"
)

func main() {
	dish := flag.String("dish", "", "forecast only this dish (default: whole menu)")
	seed := flag.Uint64("seed", 0, "simulator seed, 0 picks a random one (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if *seed != 0 {
		cfg.HistorySeed = *seed
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
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

	// Reuses the server's epoch when it shares the same SQLite file.
	var snapshots service.HistoryStore
	if cfg.StorageDSN != "" && *seed == 0 {
		db, err := store.NewSQLite(cfg.StorageDSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.StorageDSN)
			os.Exit(1)
		}
		defer db.Close()
		snapshots = db
	}

	svc := service.NewDemandService(sim, snapshots, service.DemandConfig{
		Years:      cfg.HistoryYears,
		Dishes:     cat.Names(),
		Mode:       service.ModeEpoch,
		EpochTTL:   cfg.HistoryTTL,
		TargetYear: cfg.TargetYear,
	})

	ctx := context.Background()
	console := report.NewConsole()

	snap, err := svc.History(ctx)
	if err != nil {
		slog.Error("history unavailable", "err", err)
		os.Exit(1)
	}
	console.PrintHistory(snap)

	var forecasts []service.ForecastResult
	if *dish != "" {
		res, _, err := svc.Predict(ctx, *dish)
		if err != nil {
			slog.Error("prediction failed", "dish", *dish, "err", err)
			os.Exit(1)
		}
		forecasts = append(forecasts, res)
	} else {
		forecasts, _, err = svc.PredictAll(ctx)
		if err != nil {
			slog.Error("prediction failed", "err", err)
			os.Exit(1)
		}
	}
	console.PrintForecasts(forecasts)
}
