package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrForecastNotFound = fmt.Errorf("%w: forecast", ErrNotFound)
	ErrAlertNotFound    = fmt.Errorf("%w: alert", ErrNotFound)
	ErrPlanNotFound     = fmt.Errorf("%w: handling plan", ErrNotFound)

	// Forecast errors
	ErrInsufficientData      = errors.New("insufficient demand history for forecasting")
	ErrUnsupportedAlgorithm  = errors.New("unsupported forecast algorithm")
	ErrForecastAlreadyScored = errors.New("forecast already validated")

	// Alert lifecycle errors
	ErrAlertResolved = errors.New("alert already resolved")

	// Input errors
	ErrValidation = errors.New("validation failed")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

func NewInsufficientDataError(materialID string, historyDays int) error {
	return fmt.Errorf("%w: material %s has no demand in the last %d days", ErrInsufficientData, materialID, historyDays)
}

func NewUnsupportedAlgorithmError(algorithm string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsForecastInputError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnsupportedAlgorithm)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlertResolved) ||
		errors.Is(err, ErrForecastAlreadyScored)
}
