package ports

import (
	"context"
	"time"

	"stockcast/domain/alert"
	"stockcast/domain/core"
)

// DailyDemand is one day of a dense demand series. Days without demand
// carry quantity zero.
type DailyDemand struct {
	Date time.Time `db:"day" json:"date"`
	Qty  float64   `db:"qty" json:"qty"`
}

// DemandItem is one open material requirement sourced from a work order.
type DemandItem struct {
	MaterialID     core.MaterialID   `db:"material_id" json:"material_id"`
	MaterialCode   string            `db:"material_code" json:"material_code"`
	MaterialName   string            `db:"material_name" json:"material_name"`
	ProjectID      core.ProjectID    `db:"project_id" json:"project_id"`
	WorkOrderID    *core.WorkOrderID `db:"work_order_id" json:"work_order_id,omitempty"`
	RequiredQty    float64           `db:"required_qty" json:"required_qty"`
	RequiredDate   time.Time         `db:"required_date" json:"required_date"`
	IsCriticalPath bool              `db:"is_critical_path" json:"is_critical_path"`
}

// SupplyReader is the read side of the persistence collaborator: work
// orders, inventory balances, purchase orders, projects and materials,
// exposed as the handful of queries the engines need.
type SupplyReader interface {
	// DailyDemandHistory returns a dense day-indexed demand series for the
	// material over [since, until), zero-filling days without demand.
	// Optionally scoped to one project.
	DailyDemandHistory(ctx context.Context, materialID core.MaterialID, since, until time.Time, projectID *core.ProjectID) ([]DailyDemand, error)

	// AvailableStockQty returns on-hand stock for the material.
	AvailableStockQty(ctx context.Context, materialID core.MaterialID) (float64, error)

	// InTransitQty returns the ordered-but-unreceived quantity across open
	// purchase orders for the material.
	InTransitQty(ctx context.Context, materialID core.MaterialID) (float64, error)

	// OpenDemand returns material requirements from open work orders due
	// within horizonDays, optionally filtered by project and/or material.
	OpenDemand(ctx context.Context, projectID *core.ProjectID, materialID *core.MaterialID, horizonDays int) ([]DemandItem, error)

	// MaterialUnitPrice returns the material's unit price, or ok=false when
	// the material or its price is unknown.
	MaterialUnitPrice(ctx context.Context, materialID core.MaterialID) (float64, bool, error)

	// AverageSupplierLeadTimeDays returns the historical mean days between
	// order and actual delivery, or ok=false when no delivered orders exist.
	AverageSupplierLeadTimeDays(ctx context.Context, materialID core.MaterialID) (int, bool, error)

	// ProjectsWithOpenDemand lists projects holding open demand for the
	// material, optionally scoped to one project.
	ProjectsWithOpenDemand(ctx context.Context, materialID core.MaterialID, projectID *core.ProjectID) ([]alert.AffectedProject, error)
}
