package ports

import (
	"context"

	"stockcast/domain/alert"
	"stockcast/domain/core"
)

// PlanRepository defines the interface for handling plan persistence
type PlanRepository interface {
	// CreateBatch persists all plans generated for one alert in a single
	// transaction; numbers are assigned inside that transaction.
	CreateBatch(ctx context.Context, plans []alert.HandlingPlan) error

	// ListByAlert returns the plans for an alert ordered by rank.
	ListByAlert(ctx context.Context, alertID core.AlertID) ([]alert.HandlingPlan, error)

	// Update merges a modified plan back (execution status changes).
	Update(ctx context.Context, p *alert.HandlingPlan) error
}
