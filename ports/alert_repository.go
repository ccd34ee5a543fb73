package ports

import (
	"context"
	"time"

	"stockcast/domain/alert"
	"stockcast/domain/core"
)

// AlertFilter narrows alert listings. Nil fields match everything.
type AlertFilter struct {
	ProjectID  *core.ProjectID
	MaterialID *core.MaterialID
	Severity   *alert.Severity
	Status     *alert.Status
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// AlertRepository defines the interface for shortage alert persistence
type AlertRepository interface {
	// Create persists a new alert, assigning its date-scoped alert number
	// inside the same transaction as the insert.
	Create(ctx context.Context, a *alert.ShortageAlert) error

	// Update merges a modified alert back (status transitions, resolution).
	Update(ctx context.Context, a *alert.ShortageAlert) error

	// GetByID retrieves an alert by row ID.
	GetByID(ctx context.Context, id core.AlertID) (*alert.ShortageAlert, error)

	// List returns alerts matching the filter plus the unpaginated total.
	List(ctx context.Context, filter AlertFilter) ([]alert.ShortageAlert, int, error)

	// ListSince returns all alerts whose alert date falls in [since, now],
	// for in-memory analytics scans.
	ListSince(ctx context.Context, since time.Time) ([]alert.ShortageAlert, error)

	// ListOpen returns all PENDING and PROCESSING alerts.
	ListOpen(ctx context.Context) ([]alert.ShortageAlert, error)
}
