package chat

import (
	"errors"
	"fmt"
)

// Disconnect causes. A connection ends with exactly one of these, possibly
// wrapping a transport error.
var (
	// ErrServiceUnavailable indicates the server refused or dropped the
	// session without a more specific reason.
	ErrServiceUnavailable = errors.New("chat service unavailable")

	// ErrAppExpired indicates the server rejected the client as too old.
	ErrAppExpired = errors.New("app version is obsolete")

	// ErrDeviceDelinked indicates the server no longer recognizes this
	// device's credentials.
	ErrDeviceDelinked = errors.New("device delinked")

	// ErrConnectionInvalidated indicates the server closed the session
	// because it was superseded by another connection.
	ErrConnectionInvalidated = errors.New("connection invalidated")

	// ErrRemoteIdle indicates the server closed an idle session.
	ErrRemoteIdle = errors.New("remote end closed idle connection")
)

// TransportError wraps a websocket-level fault that ended the connection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("chat transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
