package alert

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"stockcast/domain/core"
)

// Strategy is the remediation approach a handling plan proposes.
type Strategy string

const (
	StrategyUrgentPurchase  Strategy = "URGENT_PURCHASE"
	StrategySubstitute      Strategy = "SUBSTITUTE"
	StrategyTransfer        Strategy = "TRANSFER"
	StrategyPartialDelivery Strategy = "PARTIAL_DELIVERY"
	StrategyReschedule      Strategy = "RESCHEDULE"
)

// PlanStatus is the execution lifecycle state of a handling plan.
type PlanStatus string

const (
	PlanPending   PlanStatus = "PENDING"
	PlanApproved  PlanStatus = "APPROVED"
	PlanRejected  PlanStatus = "REJECTED"
	PlanExecuting PlanStatus = "EXECUTING"
	PlanCompleted PlanStatus = "COMPLETED"
	PlanFailed    PlanStatus = "FAILED"
)

// ScoreWeights are the composite weights applied to the four sub-scores.
type ScoreWeights struct {
	Feasibility float64 `json:"feasibility"`
	Cost        float64 `json:"cost"`
	Time        float64 `json:"time"`
	Risk        float64 `json:"risk"`
}

// DefaultScoreWeights returns the standard 0.3/0.3/0.3/0.1 weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Feasibility: 0.3, Cost: 0.3, Time: 0.3, Risk: 0.1}
}

// Value implements driver.Valuer for the JSONB weights column.
func (w ScoreWeights) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan implements sql.Scanner.
func (w *ScoreWeights) Scan(src interface{}) error {
	if src == nil {
		*w = ScoreWeights{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("score_weights: unexpected column type %T", src)
	}
	return json.Unmarshal(b, w)
}

// StringList is stored as a JSONB array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("string list: unexpected column type %T", src)
	}
	return json.Unmarshal(b, l)
}

// HandlingPlan is one candidate remediation for a shortage alert.
type HandlingPlan struct {
	ID         core.PlanID  `db:"id" json:"id"`
	PlanNumber string       `db:"plan_number" json:"plan_number"`
	AlertID    core.AlertID `db:"alert_id" json:"alert_id"`
	Strategy   Strategy     `db:"strategy" json:"strategy"`

	ProposedQty       float64    `db:"proposed_qty" json:"proposed_qty"`
	ProposedDate      *time.Time `db:"proposed_date" json:"proposed_date,omitempty"`
	EstimatedLeadTime int        `db:"estimated_lead_time_days" json:"estimated_lead_time_days"`
	EstimatedCost     float64    `db:"estimated_cost" json:"estimated_cost"`

	FeasibilityScore float64      `db:"feasibility_score" json:"feasibility_score"`
	CostScore        float64      `db:"cost_score" json:"cost_score"`
	TimeScore        float64      `db:"time_score" json:"time_score"`
	RiskScore        float64      `db:"risk_score" json:"risk_score"`
	AIScore          float64      `db:"ai_score" json:"ai_score"`
	Weights          ScoreWeights `db:"score_weights" json:"score_weights"`
	ScoreExplanation string       `db:"score_explanation" json:"score_explanation"`

	Advantages    StringList `db:"advantages" json:"advantages"`
	Disadvantages StringList `db:"disadvantages" json:"disadvantages"`
	Risks         StringList `db:"risks" json:"risks"`

	IsRecommended bool `db:"is_recommended" json:"is_recommended"`
	Rank          int  `db:"rank" json:"rank"`

	Status PlanStatus `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
