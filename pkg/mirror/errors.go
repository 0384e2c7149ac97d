package mirror

import "errors"

// MirrorErrorCode classifies physical mirror failures.
type MirrorErrorCode int

const (
	// ErrNotFound indicates the route has no physical presence
	ErrNotFound MirrorErrorCode = iota

	// ErrInvalidPath indicates the route cannot be mapped onto the mirror
	// (malformed, or it escapes the mirror's root)
	ErrInvalidPath

	// ErrIOError indicates the underlying storage failed
	ErrIOError
)

// String returns a human-readable name for the error code.
func (c MirrorErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrInvalidPath:
		return "INVALID_PATH"
	case ErrIOError:
		return "IO_ERROR"
	default:
		return "UNKNOWN"
	}
}

// MirrorError is the typed error returned by PhysicalMirror implementations
// for conditions callers are expected to branch on. Infrastructure failures
// are wrapped and surfaced unchanged instead.
type MirrorError struct {
	// Code classifies the failure
	Code MirrorErrorCode

	// Message describes what went wrong
	Message string

	// Path is the route or physical location the error refers to
	Path string
}

// Error implements the error interface.
func (e *MirrorError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// IsNotFound reports whether err is a MirrorError with ErrNotFound.
func IsNotFound(err error) bool {
	var mirrorErr *MirrorError
	return errors.As(err, &mirrorErr) && mirrorErr.Code == ErrNotFound
}

// IsInvalidPath reports whether err is a MirrorError with ErrInvalidPath.
func IsInvalidPath(err error) bool {
	var mirrorErr *MirrorError
	return errors.As(err, &mirrorErr) && mirrorErr.Code == ErrInvalidPath
}

// IsIOError reports whether err is a MirrorError with ErrIOError.
func IsIOError(err error) bool {
	var mirrorErr *MirrorError
	return errors.As(err, &mirrorErr) && mirrorErr.Code == ErrIOError
}
