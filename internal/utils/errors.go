package utils

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory indicates a forecast was requested with fewer than
// the minimum required months of historical data.
var ErrInsufficientHistory = errors.New("insufficient historical data")

// ErrModelFit indicates that no candidate forecast model converged.
var ErrModelFit = errors.New("model fit failed")

// ValidationError represents an error occurring during input validation.
// Simulations reject invalid inputs before any month is computed.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}
