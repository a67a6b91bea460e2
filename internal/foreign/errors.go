package foreign

import (
	"errors"
	"fmt"
)

// TypeMismatchError reports that a foreign object's declared type does not
// match the contract expected at construction time.
type TypeMismatchError struct {
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("foreign object type mismatch: want %s, got %s", e.Want, e.Got)
}

// AttachError reports that the calling thread could not be attached to the
// foreign runtime. This is unrecoverable: it means the runtime is
// unreachable, typically because it is shutting down.
type AttachError struct {
	Err error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("failed to attach thread to foreign runtime: %v", e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

// ConversionError reports that a native value could not be converted into
// its foreign representation.
type ConversionError struct {
	Kind string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert %s value: %v", e.Kind, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// InvocationError reports that a foreign method call failed, including the
// case of the callee raising.
type InvocationError struct {
	Method string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("foreign call %s failed: %v", e.Method, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// TranslationError reports that a native error value could not be turned
// into a foreign exception object.
type TranslationError struct {
	Cause error
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("failed to translate error %q: %v", e.Cause, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// IsTypeMismatch checks whether err is a construction-time type mismatch.
func IsTypeMismatch(err error) bool {
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// IsAttachError checks whether err indicates an unreachable runtime.
func IsAttachError(err error) bool {
	var e *AttachError
	return errors.As(err, &e)
}

// IsInvocationError checks whether err came from a failed foreign call.
func IsInvocationError(err error) bool {
	var e *InvocationError
	return errors.As(err, &e)
}
