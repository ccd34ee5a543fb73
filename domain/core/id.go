package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	MaterialID  ID
	ProjectID   ID
	WorkOrderID ID
	ForecastID  ID
	AlertID     ID
	PlanID      ID
)

func (id MaterialID) String() string  { return ID(id).String() }
func (id ProjectID) String() string   { return ID(id).String() }
func (id WorkOrderID) String() string { return ID(id).String() }
func (id ForecastID) String() string  { return ID(id).String() }
func (id AlertID) String() string     { return ID(id).String() }
func (id PlanID) String() string      { return ID(id).String() }

func (id MaterialID) IsEmpty() bool { return id == "" }
func (id ProjectID) IsEmpty() bool  { return id == "" }

// ParseMaterialID parses a string into MaterialID
func ParseMaterialID(s string) (MaterialID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("material ID cannot be empty")
	}
	return MaterialID(s), nil
}

// ParseProjectID parses a string into ProjectID
func ParseProjectID(s string) (ProjectID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("project ID cannot be empty")
	}
	return ProjectID(s), nil
}

// ParseForecastID parses a string into ForecastID
func ParseForecastID(s string) (ForecastID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("forecast ID cannot be empty")
	}
	return ForecastID(s), nil
}

// ParseAlertID parses a string into AlertID
func ParseAlertID(s string) (AlertID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("alert ID cannot be empty")
	}
	return AlertID(s), nil
}
