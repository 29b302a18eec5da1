package lazybam

import (
	"errors"
	"fmt"
)

// IOError reports a failure to open or read from a record source.
// It is terminal for the Reader that produced it.
type IOError struct {
	Op   string // "open", "read", "header"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("lazybam: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("lazybam: %s %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DecodeError reports a malformed scalar field. It only affects the
// accessor that returned it, the rest of the record stays readable.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("lazybam: invalid %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BuildError reports a failed rebuild. No RebuiltRecord accompanies it.
type BuildError struct {
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Err == nil {
		return "lazybam: rebuild failed: " + e.Reason
	}
	return fmt.Sprintf("lazybam: rebuild failed: %s: %v", e.Reason, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// IsBuildError reports whether err is, or wraps, a *BuildError.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
