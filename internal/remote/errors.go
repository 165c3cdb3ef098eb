package remote

import (
	"context"
	"errors"
	"fmt"
)

// failureKind classifies why a call ended as a transport failure.
// It is logged and traced, never shown to users.
type failureKind string

const (
	failureTimeout  failureKind = "timeout"
	failureOutage   failureKind = "outage"
	failureServer   failureKind = "server_error"
	failureContract failureKind = "contract_mismatch"
	failureInternal failureKind = "internal"
)

// callError is the diagnostic cause behind a StatusTransport result.
type callError struct {
	kind failureKind
	op   string
	msg  string
	err  error
}

func (e *callError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.op, e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.op, e.kind, e.msg)
}

func (e *callError) Unwrap() error { return e.err }

func newCallError(kind failureKind, op, msg string, err error) *callError {
	return &callError{kind: kind, op: op, msg: msg, err: err}
}

// classifyDoError separates deadline expiry from other connection failures.
func classifyDoError(ctx context.Context, op string, err error) *callError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newCallError(failureTimeout, op, "request timeout", err)
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return newCallError(failureTimeout, op, "request timeout", err)
	}
	return newCallError(failureOutage, op, "failed to execute request", err)
}
