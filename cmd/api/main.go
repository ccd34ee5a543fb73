package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stockcast/adapters/api"
	"stockcast/adapters/postgres"
	"stockcast/adapters/postgres/migrations"
	"stockcast/app"
	"stockcast/internal/config"
	"stockcast/internal/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logging.NewFromEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
		log.Error("failed to run migrations: %v", err)
		os.Exit(1)
	}

	forecastRepo := postgres.NewForecastRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	planRepo := postgres.NewPlanRepository(db)
	supply := postgres.NewSupplyReader(db)

	forecastEngine := app.NewForecastEngine(forecastRepo, supply, log, app.ForecastDefaults{
		HorizonDays:     cfg.Forecast.HorizonDays,
		HistoryDays:     cfg.Forecast.HistoryDays,
		ConfidenceLevel: cfg.Forecast.ConfidenceLevel,
	})
	alertEngine := app.NewAlertEngine(alertRepo, planRepo, supply, app.NewSolutionScorer(), log, cfg.Scan.Workers)
	service := app.NewShortageAlertService(alertRepo, planRepo, alertEngine, forecastEngine, log)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewServer(service, log).Handler(),
	}

	go func() {
		log.Info("listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed: %v", err)
	}
}
