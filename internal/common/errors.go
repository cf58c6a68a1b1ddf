// Package common defines shared constants and sentinel errors used across
// the reader client layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Connectivity errors.
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrNotFoundOffline    = errors.New("not available offline")

	// Local storage errors. Concrete failures are returned as *StorageError.
	ErrStorageFailure = errors.New("storage failure")

	// Auth errors.
	ErrAuthRequired = errors.New("authentication required")
	ErrAuthExpired  = errors.New("authentication expired")
	ErrInvalidToken = errors.New("invalid token")
)

// StorageError reports a failed local store operation. It matches
// ErrStorageFailure with errors.Is and unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }

// NewStorageError wraps err as a *StorageError for op. nil stays nil, and an
// error that already is a StorageError is returned unchanged.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
