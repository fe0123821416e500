package entities

import (
	"errors"
	"fmt"
)

// DataFormatError reports a missing column or malformed field in a source table
type DataFormatError struct {
	Dataset string
	Row     int // 1-based file row including the header; 0 when not row specific
	Column  string
	Value   string
	Reason  string
	Err     error
}

// Error implements the error interface
func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("%s data format error", e.Dataset)
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" in column '%s'", e.Column)
	}
	msg += ": " + e.Reason
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: %q)", e.Value)
	}
	return msg
}

// Unwrap returns the underlying parse error
func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// NewMissingColumnError creates a DataFormatError for an absent required column
func NewMissingColumnError(dataset, column string) error {
	return &DataFormatError{
		Dataset: dataset,
		Column:  column,
		Reason:  "required column is missing",
	}
}

// ErrInsufficientHistory is matched by every InsufficientHistoryError
var ErrInsufficientHistory = errors.New("insufficient sales history")

// InsufficientHistoryError reports a SKU whose series is too short for the chosen forecaster
type InsufficientHistoryError struct {
	SKU          SKU
	Method       string
	Observations int
	Required     int
}

// Error implements the error interface
func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient sales history for %s: %s needs %d observations, got %d",
		e.SKU, e.Method, e.Required, e.Observations)
}

// Is matches ErrInsufficientHistory
func (e *InsufficientHistoryError) Is(target error) bool {
	return target == ErrInsufficientHistory
}
