package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectTimeout reports that the server produced no response within
	// the connect timeout budget.
	ErrConnectTimeout = errors.New("assistant connect timeout: no response before the deadline")
	// ErrStreamStalled reports that an open stream delivered no further data
	// within the stall timeout budget.
	ErrStreamStalled = errors.New("assistant stream stalled: no data before the deadline")
	// ErrUnauthorized reports that the server rejected the bearer credential.
	// The configured TokenSource has already been asked to invalidate it.
	ErrUnauthorized = errors.New("assistant rejected the credentials")
)

// ServerError is a non-success response received before streaming started.
// Detail carries the structured error message parsed from the body when the
// server provided one, or a generic fallback otherwise.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("assistant returned status %d: %s", e.StatusCode, e.Detail)
}

// TransportError is a network-level failure (connection refused, reset, DNS)
// as opposed to a response the server deliberately sent.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("assistant request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
