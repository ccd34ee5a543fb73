package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/ports"
)

// Work order states that still consume material.
var openWorkOrderStatuses = []string{"PENDING", "CONFIRMED", "IN_PROGRESS"}

// Purchase order states with quantity still on the way.
var openPurchaseOrderStatuses = []string{"APPROVED", "ORDERED", "PARTIALLY_RECEIVED"}

// supplyReader implements the SupplyReader interface over the ERP tables:
// work orders, inventory balances, purchase orders, projects and materials.
type supplyReader struct {
	db *sqlx.DB
}

// NewSupplyReader creates a new PostgreSQL supply reader
func NewSupplyReader(db *sqlx.DB) ports.SupplyReader {
	return &supplyReader{db: db}
}

// DailyDemandHistory returns a dense day-indexed demand series over
// [since, until). Days without demand are zero-filled; a material with no
// demand rows at all in the window yields an empty series, which the
// forecast engine treats as insufficient data.
func (r *supplyReader) DailyDemandHistory(ctx context.Context, materialID core.MaterialID, since, until time.Time, projectID *core.ProjectID) ([]ports.DailyDemand, error) {
	scopeClause := ``
	args := []interface{}{materialID, since, until}
	if projectID != nil {
		scopeClause = ` AND wo.project_id = $4`
		args = append(args, *projectID)
	}

	var exists bool
	existsQuery := `
		SELECT EXISTS (
			SELECT 1 FROM work_orders wo
			WHERE wo.material_id = $1
			  AND wo.required_date >= $2 AND wo.required_date < $3` + scopeClause + `
		)`
	if err := r.db.GetContext(ctx, &exists, existsQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to probe demand history: %w", err)
	}
	if !exists {
		return nil, nil
	}

	query := `
		WITH demand AS (
			SELECT wo.required_date::date AS day, SUM(wo.required_qty) AS qty
			FROM work_orders wo
			WHERE wo.material_id = $1
			  AND wo.required_date >= $2 AND wo.required_date < $3` + scopeClause + `
			GROUP BY wo.required_date::date
		)
		SELECT gs.day::date AS day, COALESCE(d.qty, 0) AS qty
		FROM generate_series($2::date, $3::date - 1, interval '1 day') AS gs(day)
		LEFT JOIN demand d ON d.day = gs.day::date
		ORDER BY gs.day`

	var series []ports.DailyDemand
	if err := r.db.SelectContext(ctx, &series, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load demand history: %w", err)
	}
	return series, nil
}

// AvailableStockQty returns on-hand stock summed across warehouses.
func (r *supplyReader) AvailableStockQty(ctx context.Context, materialID core.MaterialID) (float64, error) {
	var qty float64
	query := `SELECT COALESCE(SUM(available_qty), 0) FROM inventory_balances WHERE material_id = $1`
	if err := r.db.GetContext(ctx, &qty, query, materialID); err != nil {
		return 0, fmt.Errorf("failed to get available stock: %w", err)
	}
	return qty, nil
}

// InTransitQty returns ordered-but-unreceived quantity on open purchase
// orders.
func (r *supplyReader) InTransitQty(ctx context.Context, materialID core.MaterialID) (float64, error) {
	var qty float64
	query := `
		SELECT COALESCE(SUM(poi.ordered_qty - poi.received_qty), 0)
		FROM purchase_order_items poi
		JOIN purchase_orders po ON po.id = poi.purchase_order_id
		WHERE poi.material_id = $1
		  AND po.status = ANY($2)
		  AND poi.ordered_qty > poi.received_qty`
	if err := r.db.GetContext(ctx, &qty, query, materialID, pq.Array(openPurchaseOrderStatuses)); err != nil {
		return 0, fmt.Errorf("failed to get in-transit quantity: %w", err)
	}
	return qty, nil
}

// OpenDemand returns open work order requirements due within horizonDays.
func (r *supplyReader) OpenDemand(ctx context.Context, projectID *core.ProjectID, materialID *core.MaterialID, horizonDays int) ([]ports.DemandItem, error) {
	query := `
		SELECT wo.material_id, m.code AS material_code, m.name AS material_name,
		       wo.project_id, wo.id AS work_order_id,
		       wo.required_qty, wo.required_date, wo.is_critical_path
		FROM work_orders wo
		JOIN materials m ON m.id = wo.material_id
		WHERE wo.status = ANY($1)
		  AND wo.required_date < CURRENT_DATE + $2::int`
	args := []interface{}{pq.Array(openWorkOrderStatuses), horizonDays}

	if projectID != nil {
		args = append(args, *projectID)
		query += fmt.Sprintf(` AND wo.project_id = $%d`, len(args))
	}
	if materialID != nil {
		args = append(args, *materialID)
		query += fmt.Sprintf(` AND wo.material_id = $%d`, len(args))
	}
	query += ` ORDER BY wo.required_date, wo.id`

	var items []ports.DemandItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load open demand: %w", err)
	}
	return items, nil
}

// MaterialUnitPrice returns the material's unit price when one is on file.
func (r *supplyReader) MaterialUnitPrice(ctx context.Context, materialID core.MaterialID) (float64, bool, error) {
	var price sql.NullFloat64
	query := `SELECT unit_price FROM materials WHERE id = $1`
	if err := r.db.GetContext(ctx, &price, query, materialID); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get unit price: %w", err)
	}
	if !price.Valid {
		return 0, false, nil
	}
	return price.Float64, true, nil
}

// AverageSupplierLeadTimeDays returns the mean order-to-delivery days over
// delivered purchase orders carrying this material.
func (r *supplyReader) AverageSupplierLeadTimeDays(ctx context.Context, materialID core.MaterialID) (int, bool, error) {
	var avg sql.NullFloat64
	query := `
		SELECT AVG(po.actual_delivery_date::date - po.order_date::date)::float8
		FROM purchase_orders po
		JOIN purchase_order_items poi ON poi.purchase_order_id = po.id
		WHERE poi.material_id = $1
		  AND po.actual_delivery_date IS NOT NULL`
	if err := r.db.GetContext(ctx, &avg, query, materialID); err != nil {
		return 0, false, fmt.Errorf("failed to get supplier lead time: %w", err)
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return int(math.Round(avg.Float64)), true, nil
}

// ProjectsWithOpenDemand lists projects holding open demand for a material.
func (r *supplyReader) ProjectsWithOpenDemand(ctx context.Context, materialID core.MaterialID, projectID *core.ProjectID) ([]alert.AffectedProject, error) {
	query := `
		SELECT wo.project_id, p.name AS project_name, SUM(wo.required_qty) AS required_qty
		FROM work_orders wo
		JOIN projects p ON p.id = wo.project_id
		WHERE wo.material_id = $1
		  AND wo.status = ANY($2)`
	args := []interface{}{materialID, pq.Array(openWorkOrderStatuses)}

	if projectID != nil {
		args = append(args, *projectID)
		query += fmt.Sprintf(` AND wo.project_id = $%d`, len(args))
	}
	query += ` GROUP BY wo.project_id, p.name ORDER BY required_qty DESC`

	var projects []alert.AffectedProject
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load projects with open demand: %w", err)
	}
	return projects, nil
}
