package alert

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"stockcast/domain/core"
)

// Severity orders shortage alerts from informational to urgent.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
	SeverityUrgent   Severity = "URGENT"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
	SeverityUrgent:   3,
}

// Rank returns the ordering position of the severity (INFO lowest).
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is at or above the given severity.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// IsValid reports whether the value names a known severity.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Status is the alert lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
	StatusCancelled  Status = "CANCELLED"
)

// Open reports whether the alert still needs handling.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusProcessing
}

// ShortageAlert is one detected material shortfall against a demand source.
type ShortageAlert struct {
	ID          core.AlertID      `db:"id" json:"id"`
	AlertNumber string            `db:"alert_number" json:"alert_number"`
	MaterialID  core.MaterialID   `db:"material_id" json:"material_id"`
	ProjectID   core.ProjectID    `db:"project_id" json:"project_id"`
	WorkOrderID *core.WorkOrderID `db:"work_order_id" json:"work_order_id,omitempty"`

	// Material snapshot at detection time.
	MaterialCode string `db:"material_code" json:"material_code"`
	MaterialName string `db:"material_name" json:"material_name"`

	RequiredQty  float64 `db:"required_qty" json:"required_qty"`
	AvailableQty float64 `db:"available_qty" json:"available_qty"`
	InTransitQty float64 `db:"in_transit_qty" json:"in_transit_qty"`
	ShortageQty  float64 `db:"shortage_qty" json:"shortage_qty"`

	Severity Severity `db:"severity" json:"severity"`

	AlertDate      time.Time `db:"alert_date" json:"alert_date"`
	RequiredDate   time.Time `db:"required_date" json:"required_date"`
	DaysToShortage int       `db:"days_to_shortage" json:"days_to_shortage"`

	// Predicted impact.
	AffectedProjects AffectedProjects `db:"affected_projects" json:"affected_projects"`
	EstimatedDelay   int              `db:"estimated_delay_days" json:"estimated_delay_days"`
	EstimatedCost    float64          `db:"estimated_cost_impact" json:"estimated_cost_impact"`
	RiskScore        float64          `db:"risk_score" json:"risk_score"`
	IsCriticalPath   bool             `db:"is_critical_path" json:"is_critical_path"`

	Status Status `db:"status" json:"status"`

	// Resolution fields, set once on resolve.
	ResolutionType *string    `db:"resolution_type" json:"resolution_type,omitempty"`
	ResolutionNote *string    `db:"resolution_note" json:"resolution_note,omitempty"`
	ActualCost     *float64   `db:"actual_cost" json:"actual_cost,omitempty"`
	ActualDelay    *int       `db:"actual_delay_days" json:"actual_delay_days,omitempty"`
	Handler        *string    `db:"handler" json:"handler,omitempty"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Resolution carries the metadata recorded when an alert is resolved.
type Resolution struct {
	Type        string   `json:"type"`
	Note        string   `json:"note"`
	Handler     string   `json:"handler"`
	ActualCost  *float64 `json:"actual_cost,omitempty"`
	ActualDelay *int     `json:"actual_delay_days,omitempty"`
}

// WithResolution returns a resolved copy of the alert. The receiver is not
// mutated; callers merge the copy back through the repository update.
func (a *ShortageAlert) WithResolution(res Resolution, now time.Time) ShortageAlert {
	updated := *a
	updated.Status = StatusResolved
	updated.ResolutionType = &res.Type
	updated.ResolutionNote = &res.Note
	updated.Handler = &res.Handler
	updated.ActualCost = res.ActualCost
	updated.ActualDelay = res.ActualDelay
	resolvedAt := now
	updated.ResolvedAt = &resolvedAt
	updated.UpdatedAt = now
	return updated
}

// AffectedProject is one project touched by a material shortfall.
type AffectedProject struct {
	ProjectID   core.ProjectID `db:"project_id" json:"project_id"`
	ProjectName string         `db:"project_name" json:"project_name"`
	RequiredQty float64        `db:"required_qty" json:"required_qty"`
}

// AffectedProjects is stored as a JSONB column.
type AffectedProjects []AffectedProject

// Value implements driver.Valuer so the slice round-trips through JSONB.
func (p AffectedProjects) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *AffectedProjects) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("affected_projects: unexpected column type %T", src)
	}
	return json.Unmarshal(b, p)
}

// ImpactEstimate is the predicted blast radius of one shortage.
type ImpactEstimate struct {
	AffectedProjects   AffectedProjects `json:"affected_projects"`
	EstimatedDelayDays int              `json:"estimated_delay_days"`
	EstimatedCost      float64          `json:"estimated_cost_impact"`
	RiskScore          float64          `json:"risk_score"`
}
