package ports

import (
	"context"
	"time"

	"stockcast/domain/core"
	"stockcast/domain/forecast"
)

// ForecastRepository defines the interface for demand forecast persistence
type ForecastRepository interface {
	// Create persists a new forecast, assigning its date-scoped forecast
	// number inside the same transaction as the insert.
	Create(ctx context.Context, f *forecast.DemandForecast) error

	// Update merges a modified forecast back (validation outcome).
	Update(ctx context.Context, f *forecast.DemandForecast) error

	// GetByID retrieves a forecast by row ID.
	GetByID(ctx context.Context, id core.ForecastID) (*forecast.DemandForecast, error)

	// GetByNumber retrieves a forecast by business number.
	GetByNumber(ctx context.Context, number string) (*forecast.DemandForecast, error)

	// ListValidatedSince returns validated forecasts created on or after the
	// cutoff, optionally filtered to one material.
	ListValidatedSince(ctx context.Context, since time.Time, materialID *core.MaterialID) ([]forecast.DemandForecast, error)
}
