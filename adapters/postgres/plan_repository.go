package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/ports"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new PostgreSQL handling plan repository
func NewPlanRepository(db *sqlx.DB) ports.PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `
	id, plan_number, alert_id, strategy,
	proposed_qty, proposed_date, estimated_lead_time_days, estimated_cost,
	feasibility_score, cost_score, time_score, risk_score, ai_score,
	score_weights, score_explanation,
	advantages, disadvantages, risks,
	is_recommended, rank, status, created_at, updated_at`

// CreateBatch persists all plans for one alert in a single transaction.
// Recommendation flag and ranks were assigned in memory, so a failure can
// only lose the whole batch, never half of it.
func (r *planRepository) CreateBatch(ctx context.Context, plans []alert.HandlingPlan) error {
	if len(plans) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range plans {
		p := &plans[i]
		number, err := nextBusinessNumber(ctx, tx, "shortage_handling_plans", "plan_number", core.PlanNumberPrefix, p.CreatedAt)
		if err != nil {
			return err
		}
		p.PlanNumber = number

		_, err = tx.ExecContext(ctx, `
			INSERT INTO shortage_handling_plans (
				id, plan_number, alert_id, strategy,
				proposed_qty, proposed_date, estimated_lead_time_days, estimated_cost,
				feasibility_score, cost_score, time_score, risk_score, ai_score,
				score_weights, score_explanation,
				advantages, disadvantages, risks,
				is_recommended, rank, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
				$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
			p.ID, p.PlanNumber, p.AlertID, p.Strategy,
			p.ProposedQty, p.ProposedDate, p.EstimatedLeadTime, p.EstimatedCost,
			p.FeasibilityScore, p.CostScore, p.TimeScore, p.RiskScore, p.AIScore,
			p.Weights, p.ScoreExplanation,
			p.Advantages, p.Disadvantages, p.Risks,
			p.IsRecommended, p.Rank, p.Status, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create handling plan: %w", err)
		}
	}

	return tx.Commit()
}

// ListByAlert returns the plans for an alert ordered by rank.
func (r *planRepository) ListByAlert(ctx context.Context, alertID core.AlertID) ([]alert.HandlingPlan, error) {
	var plans []alert.HandlingPlan
	query := `SELECT` + planColumns + ` FROM shortage_handling_plans WHERE alert_id = $1 ORDER BY rank`
	if err := r.db.SelectContext(ctx, &plans, query, alertID); err != nil {
		return nil, fmt.Errorf("failed to list plans for alert %s: %w", alertID, err)
	}
	return plans, nil
}

// Update merges execution status changes back.
func (r *planRepository) Update(ctx context.Context, p *alert.HandlingPlan) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE shortage_handling_plans SET
			status = $2,
			updated_at = $3
		WHERE id = $1`,
		p.ID, p.Status, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update handling plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrPlanNotFound
	}
	return nil
}
