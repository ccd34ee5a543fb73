package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"stockcast/adapters/postgres"
	"stockcast/app"
	"stockcast/domain/core"
	"stockcast/internal/config"
	"stockcast/internal/logging"
)

// One-shot shortage scan, meant to run from cron. Optionally forecasts a
// project's materials first so the scan works against fresh numbers.
func main() {
	_ = godotenv.Load()

	projectID := flag.String("project", "", "limit the scan to one project")
	materialID := flag.String("material", "", "limit the scan to one material")
	daysAhead := flag.Int("days", 0, "scan window in days (default from SCAN_DAYS_AHEAD)")
	withForecast := flag.Bool("forecast", false, "batch-forecast the project's materials before scanning (requires -project)")
	flag.Parse()

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

	alertRepo := postgres.NewAlertRepository(db)
	planRepo := postgres.NewPlanRepository(db)
	supply := postgres.NewSupplyReader(db)
	forecastEngine := app.NewForecastEngine(postgres.NewForecastRepository(db), supply, log, app.ForecastDefaults{
		HorizonDays:     cfg.Forecast.HorizonDays,
		HistoryDays:     cfg.Forecast.HistoryDays,
		ConfidenceLevel: cfg.Forecast.ConfidenceLevel,
	})
	alertEngine := app.NewAlertEngine(alertRepo, planRepo, supply, app.NewSolutionScorer(), log, cfg.Scan.Workers)

	ctx := context.Background()

	req := app.ScanRequest{DaysAhead: *daysAhead}
	if req.DaysAhead <= 0 {
		req.DaysAhead = cfg.Scan.DaysAhead
	}
	if *projectID != "" {
		id, err := core.ParseProjectID(*projectID)
		if err != nil {
			log.Error("invalid -project: %v", err)
			os.Exit(2)
		}
		req.ProjectID = &id
	}
	if *materialID != "" {
		id, err := core.ParseMaterialID(*materialID)
		if err != nil {
			log.Error("invalid -material: %v", err)
			os.Exit(2)
		}
		req.MaterialID = &id
	}

	if *withForecast {
		if req.ProjectID == nil {
			log.Error("-forecast requires -project")
			os.Exit(2)
		}
		result, err := forecastEngine.BatchForecastForProject(ctx, *req.ProjectID, cfg.Forecast.HorizonDays)
		if err != nil {
			log.Error("batch forecast failed: %v", err)
			os.Exit(1)
		}
		log.Info("batch forecast: %d forecasts, %d failures", len(result.Forecasts), len(result.Failures))
		for _, f := range result.Failures {
			log.Warn("  material %s: %s", f.MaterialID, f.Reason)
		}
	}

	alerts, err := alertEngine.ScanAndAlert(ctx, req)
	if err != nil {
		log.Error("scan failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("scan complete: %d alerts created\n", len(alerts))
	for _, a := range alerts {
		fmt.Printf("  %-8s %s %s shortage=%.1f due=%s\n",
			a.Severity, a.AlertNumber, a.MaterialCode, a.ShortageQty, a.RequiredDate.Format("2006-01-02"))
	}
}
