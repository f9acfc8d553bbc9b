// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Ledger errors.
	ErrNotFound      = errors.New("not found")
	ErrReferenced    = errors.New("referenced by dependent records")
	ErrInvalidRecord = errors.New("invalid record")

	// Remote store errors.
	ErrNotConnected = errors.New("not connected to a spreadsheet")
	ErrUnreachable  = errors.New("remote store unreachable")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConnectivityError means the remote store could not be reached, rejected the
// credentials, or failed to provision or read. The attempted operation did
// not take effect.
type ConnectivityError struct {
	Err error
	Op  string
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ValidationError blocks a single mutation. Local state is unchanged.
type ValidationError struct {
	Err    error
	Entity string
	ID     string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Entity, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err for the given entity.
func NewValidationError(entity, id string, err error) error {
	return &ValidationError{Entity: entity, ID: id, Err: err}
}

// SyncError reports that the remote leg of an already applied local mutation
// failed. The local change stays; the remote copy lags until the next flush.
type SyncError struct {
	Err        error
	Collection string
	RecordID   string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Collection, e.RecordID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrUnreachable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
