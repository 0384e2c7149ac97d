package store

import "errors"

// StoreError represents a domain error from metadata store operations.
//
// These are business logic errors (folder not found, duplicate id) as
// opposed to infrastructure errors (connectivity, corrupt database), which
// are reported with ErrIOError and surface unchanged to the caller.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Ref is the identifier or route the error refers to (if applicable)
	Ref string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Ref != "" {
		return e.Message + ": " + e.Ref
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested folder or file doesn't exist.
	// This is a recoverable, caller-visible condition.
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a record with the same id already exists
	ErrAlreadyExists

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty id, malformed route, missing owner
	ErrInvalidArgument

	// ErrIOError indicates the backend itself failed (connectivity, disk).
	// Fatal from the store's point of view; never converted or retried here.
	ErrIOError
)

// IsNotFound reports whether err is a store lookup miss.
func IsNotFound(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Code == ErrNotFound
}

// IsAlreadyExists reports whether err is a duplicate-record error.
func IsAlreadyExists(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Code == ErrAlreadyExists
}

// IsInvalidArgument reports whether err rejects the caller's parameters.
func IsInvalidArgument(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Code == ErrInvalidArgument
}
