// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrEmptySeries      = errors.New("price series is empty")
	ErrUnorderedSeries  = errors.New("price series dates are not strictly ascending")
	ErrNonPositivePrice = errors.New("price series contains a non-positive price")
	ErrInvalidHorizon   = errors.New("horizon must be one of 1, 7, 14, 21, 30")
	ErrInvalidThreshold = errors.New("threshold must be positive")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrFetchFailed      = errors.New("market data fetch failed")
	ErrTimeout          = errors.New("operation timed out")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// SeriesError reports a malformed price series, pointing at the
// offending bar where one can be identified.
type SeriesError struct {
	Index   int
	Field   string
	Message string
	Err     error
}

func (e *SeriesError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("series error at bar %d [%s]: %s: %v", e.Index, e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("series error at bar %d [%s]: %s", e.Index, e.Field, e.Message)
}

func (e *SeriesError) Unwrap() error {
	return e.Err
}

// NewSeriesError creates a new SeriesError.
func NewSeriesError(index int, field, message string, err error) *SeriesError {
	return &SeriesError{
		Index:   index,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
