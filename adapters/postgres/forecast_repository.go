package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockcast/domain/core"
	"stockcast/domain/forecast"
	"stockcast/ports"
)

// forecastRepository implements the ForecastRepository interface
type forecastRepository struct {
	db *sqlx.DB
}

// NewForecastRepository creates a new PostgreSQL forecast repository
func NewForecastRepository(db *sqlx.DB) ports.ForecastRepository {
	return &forecastRepository{db: db}
}

const forecastColumns = `
	id, forecast_number, material_id, project_id,
	forecast_start_date, forecast_end_date, horizon_days,
	algorithm, history_days, sample_count,
	forecasted_demand, lower_bound, upper_bound, confidence_level,
	baseline_mean, baseline_std_dev, seasonal_factor,
	status, actual_demand, forecast_error, absolute_percentage_error,
	accuracy_score, validated_at, created_at, updated_at`

// Create inserts a forecast, assigning its business number inside the
// insert transaction.
func (r *forecastRepository) Create(ctx context.Context, f *forecast.DemandForecast) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	number, err := nextBusinessNumber(ctx, tx, "demand_forecasts", "forecast_number", core.ForecastNumberPrefix, f.CreatedAt)
	if err != nil {
		return err
	}
	f.ForecastNumber = number

	_, err = tx.ExecContext(ctx, `
		INSERT INTO demand_forecasts (
			id, forecast_number, material_id, project_id,
			forecast_start_date, forecast_end_date, horizon_days,
			algorithm, history_days, sample_count,
			forecasted_demand, lower_bound, upper_bound, confidence_level,
			baseline_mean, baseline_std_dev, seasonal_factor,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		f.ID, f.ForecastNumber, f.MaterialID, f.ProjectID,
		f.ForecastStartDate, f.ForecastEndDate, f.HorizonDays,
		f.Algorithm, f.HistoryDays, f.SampleCount,
		f.ForecastedDemand, f.LowerBound, f.UpperBound, f.ConfidenceLevel,
		f.BaselineMean, f.BaselineStdDev, f.SeasonalFactor,
		f.Status, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create forecast: %w", err)
	}

	return tx.Commit()
}

// Update merges validation outcome back onto the forecast row.
func (r *forecastRepository) Update(ctx context.Context, f *forecast.DemandForecast) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE demand_forecasts SET
			status = $2,
			actual_demand = $3,
			forecast_error = $4,
			absolute_percentage_error = $5,
			accuracy_score = $6,
			validated_at = $7,
			updated_at = $8
		WHERE id = $1`,
		f.ID, f.Status, f.ActualDemand, f.ForecastError,
		f.AbsolutePercentageError, f.AccuracyScore, f.ValidatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update forecast: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrForecastNotFound
	}
	return nil
}

// GetByID retrieves a forecast by row ID
func (r *forecastRepository) GetByID(ctx context.Context, id core.ForecastID) (*forecast.DemandForecast, error) {
	var f forecast.DemandForecast
	query := `SELECT` + forecastColumns + ` FROM demand_forecasts WHERE id = $1`
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrForecastNotFound
		}
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}
	return &f, nil
}

// GetByNumber retrieves a forecast by business number
func (r *forecastRepository) GetByNumber(ctx context.Context, number string) (*forecast.DemandForecast, error) {
	var f forecast.DemandForecast
	query := `SELECT` + forecastColumns + ` FROM demand_forecasts WHERE forecast_number = $1`
	if err := r.db.GetContext(ctx, &f, query, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrForecastNotFound
		}
		return nil, fmt.Errorf("failed to get forecast by number: %w", err)
	}
	return &f, nil
}

// ListValidatedSince returns validated forecasts created on or after the
// cutoff, optionally filtered to one material.
func (r *forecastRepository) ListValidatedSince(ctx context.Context, since time.Time, materialID *core.MaterialID) ([]forecast.DemandForecast, error) {
	query := `SELECT` + forecastColumns + `
		FROM demand_forecasts
		WHERE status = $1 AND created_at >= $2`
	args := []interface{}{forecast.StatusValidated, since}

	if materialID != nil {
		query += ` AND material_id = $3`
		args = append(args, *materialID)
	}
	query += ` ORDER BY created_at DESC`

	var forecasts []forecast.DemandForecast
	if err := r.db.SelectContext(ctx, &forecasts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list validated forecasts: %w", err)
	}
	return forecasts, nil
}
