// Package errors provides error handling for qlearn.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping and user hints from one import, and defines the sentinel
// errors the agent and its persistence layer are classified by:
//
//	// Construction and config validation
//	return errors.Wrapf(errors.ErrConfiguration, "alpha %v outside (0, 1]", alpha)
//
//	// Load and save
//	return errors.WithHint(errors.Wrap(errors.ErrPersistence, err.Error()), "check the table path")
//
// Check with errors.Is or the Is*Error helpers.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark

	// WithSecondaryError attaches an error that happened while handling err
	WithSecondaryError = crdb.WithSecondaryError
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors. Wrap these to add context while keeping errors.Is working.
var (
	// ErrConfiguration marks an agent that cannot be built: empty or
	// duplicate action set, non-finite or out-of-range hyperparameters.
	ErrConfiguration = New("configuration error")

	// ErrPersistence marks a failed load or save of a value table.
	ErrPersistence = New("persistence error")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsPersistenceError checks if an error is or wraps ErrPersistence
func IsPersistenceError(err error) bool {
	return err != nil && Is(err, ErrPersistence)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewConfigurationError creates a configuration error with a formatted message
func NewConfigurationError(format string, args ...interface{}) error {
	return Wrapf(ErrConfiguration, format, args...)
}

// WrapPersistence classifies err as a persistence failure on path.
// Returns nil when err is nil.
func WrapPersistence(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return Wrapf(Mark(err, ErrPersistence), "%s %s", op, path)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidRequest, format, args...)
}
