package domain

import "fmt"

// TransportError wraps a network-level failure (timeout, refused connection).
// It is never retried inline; the next cycle retries naturally.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError marks an unexpected response shape from the booking backend.
// The affected unit is skipped for the cycle.
type ProtocolError struct {
	Op     string
	Detail string
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("protocol: %s: %s", e.Op, e.Detail) }

// ValidationError marks malformed caller input (bad URL, missing identifiers).
// It is surfaced synchronously and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason) }
