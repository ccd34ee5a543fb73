package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/ports"
)

// alertRepository implements the AlertRepository interface
type alertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new PostgreSQL alert repository
func NewAlertRepository(db *sqlx.DB) ports.AlertRepository {
	return &alertRepository{db: db}
}

const alertColumns = `
	id, alert_number, material_id, project_id, work_order_id,
	material_code, material_name,
	required_qty, available_qty, in_transit_qty, shortage_qty,
	severity, alert_date, required_date, days_to_shortage,
	affected_projects, estimated_delay_days, estimated_cost_impact,
	risk_score, is_critical_path, status,
	resolution_type, resolution_note, actual_cost, actual_delay_days,
	handler, resolved_at, created_at, updated_at`

// Create inserts an alert, assigning its business number inside the insert
// transaction.
func (r *alertRepository) Create(ctx context.Context, a *alert.ShortageAlert) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	number, err := nextBusinessNumber(ctx, tx, "shortage_alerts", "alert_number", core.AlertNumberPrefix, a.CreatedAt)
	if err != nil {
		return err
	}
	a.AlertNumber = number

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shortage_alerts (
			id, alert_number, material_id, project_id, work_order_id,
			material_code, material_name,
			required_qty, available_qty, in_transit_qty, shortage_qty,
			severity, alert_date, required_date, days_to_shortage,
			affected_projects, estimated_delay_days, estimated_cost_impact,
			risk_score, is_critical_path, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		a.ID, a.AlertNumber, a.MaterialID, a.ProjectID, a.WorkOrderID,
		a.MaterialCode, a.MaterialName,
		a.RequiredQty, a.AvailableQty, a.InTransitQty, a.ShortageQty,
		a.Severity, a.AlertDate, a.RequiredDate, a.DaysToShortage,
		a.AffectedProjects, a.EstimatedDelay, a.EstimatedCost,
		a.RiskScore, a.IsCriticalPath, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return tx.Commit()
}

// Update merges status transitions and resolution metadata back.
func (r *alertRepository) Update(ctx context.Context, a *alert.ShortageAlert) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE shortage_alerts SET
			status = $2,
			resolution_type = $3,
			resolution_note = $4,
			actual_cost = $5,
			actual_delay_days = $6,
			handler = $7,
			resolved_at = $8,
			updated_at = $9
		WHERE id = $1`,
		a.ID, a.Status, a.ResolutionType, a.ResolutionNote,
		a.ActualCost, a.ActualDelay, a.Handler, a.ResolvedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrAlertNotFound
	}
	return nil
}

// GetByID retrieves an alert by row ID
func (r *alertRepository) GetByID(ctx context.Context, id core.AlertID) (*alert.ShortageAlert, error) {
	var a alert.ShortageAlert
	query := `SELECT` + alertColumns + ` FROM shortage_alerts WHERE id = $1`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &a, nil
}

// List returns alerts matching the filter plus the unpaginated total.
func (r *alertRepository) List(ctx context.Context, filter ports.AlertFilter) ([]alert.ShortageAlert, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}

	if filter.ProjectID != nil {
		addArg(` AND project_id = $%d`, *filter.ProjectID)
	}
	if filter.MaterialID != nil {
		addArg(` AND material_id = $%d`, *filter.MaterialID)
	}
	if filter.Severity != nil {
		addArg(` AND severity = $%d`, *filter.Severity)
	}
	if filter.Status != nil {
		addArg(` AND status = $%d`, *filter.Status)
	}
	if filter.DateFrom != nil {
		addArg(` AND alert_date >= $%d`, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addArg(` AND alert_date <= $%d`, *filter.DateTo)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM shortage_alerts`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := `SELECT` + alertColumns + ` FROM shortage_alerts` + where + ` ORDER BY alert_date DESC, alert_number DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(` OFFSET $%d`, len(args))
		}
	}

	var alerts []alert.ShortageAlert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, total, nil
}

// ListSince returns all alerts with alert_date on or after the cutoff.
func (r *alertRepository) ListSince(ctx context.Context, since time.Time) ([]alert.ShortageAlert, error) {
	var alerts []alert.ShortageAlert
	query := `SELECT` + alertColumns + ` FROM shortage_alerts WHERE alert_date >= $1 ORDER BY alert_date`
	if err := r.db.SelectContext(ctx, &alerts, query, since); err != nil {
		return nil, fmt.Errorf("failed to list alerts since %s: %w", since.Format("2006-01-02"), err)
	}
	return alerts, nil
}

// ListOpen returns all PENDING and PROCESSING alerts.
func (r *alertRepository) ListOpen(ctx context.Context) ([]alert.ShortageAlert, error) {
	var alerts []alert.ShortageAlert
	query := `SELECT` + alertColumns + ` FROM shortage_alerts WHERE status IN ($1, $2) ORDER BY alert_date`
	if err := r.db.SelectContext(ctx, &alerts, query, alert.StatusPending, alert.StatusProcessing); err != nil {
		return nil, fmt.Errorf("failed to list open alerts: %w", err)
	}
	return alerts, nil
}
