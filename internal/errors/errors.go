// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoUsablePrice       = errors.New("no usable price: bid/ask invalid and no last trade")
	ErrNonPositiveInput    = errors.New("price, spot, strike and time to expiry must be positive")
	ErrPriceBelowIntrinsic = errors.New("price below intrinsic value")
	ErrNoConvergence       = errors.New("implied volatility solver did not converge")
	ErrIVOutOfRange        = errors.New("implied volatility outside plausible range [1%, 300%]")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrDataNotFound        = errors.New("data not found")
	ErrDatabaseError       = errors.New("database error")
)

// SolveError describes a failed implied volatility inversion for one contract.
type SolveError struct {
	Ticker string
	Strike float64
	Type   string
	Err    error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("iv solve failed [%s %g %s]: %v", e.Ticker, e.Strike, e.Type, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}

// NewSolveError creates a new SolveError.
func NewSolveError(ticker string, strike float64, typ string, err error) *SolveError {
	return &SolveError{
		Ticker: ticker,
		Strike: strike,
		Type:   typ,
		Err:    err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Ticker   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Ticker, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Ticker, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, ticker, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Ticker:   ticker,
		Message:  message,
		Err:      err,
	}
}

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
