package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies a completion failure.
type FailureKind string

const (
	// KindConnectionFailure means the endpoint is unreachable. Fatal to the
	// whole rewrite, no further attempts.
	KindConnectionFailure FailureKind = "connection_failure"

	// KindTimeout means the request exceeded its deadline. The client
	// retries once internally before surfacing this.
	KindTimeout FailureKind = "timeout"

	// KindBadRequest means the endpoint rejected the request or returned an
	// empty completion. Fatal to the whole rewrite.
	KindBadRequest FailureKind = "bad_request"
)

// ClassifiedError tags a completion failure with its kind.
type ClassifiedError struct {
	Kind FailureKind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("completion %s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind recorded on err, or "" when err carries none.
func KindOf(err error) FailureKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsTimeout reports whether err is classified as a timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsConnectionFailure reports whether err is classified as an unreachable
// endpoint.
func IsConnectionFailure(err error) bool {
	return KindOf(err) == KindConnectionFailure
}

// IsBadRequest reports whether err is classified as a rejected request.
func IsBadRequest(err error) bool {
	return KindOf(err) == KindBadRequest
}

// classifyTransport maps an error from a failed HTTP round trip. At a
// transport call site the only question is timeout versus unreachable.
func classifyTransport(err error) *ClassifiedError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClassifiedError{Kind: KindTimeout, Err: err}
	}
	return &ClassifiedError{Kind: KindConnectionFailure, Err: err}
}

// classify maps an error from a client library call, where transport and
// API-level failures arrive on the same path. Network errors classify as
// timeout or connection failure; anything else came back from a reachable
// endpoint and classifies as a bad request.
func classify(err error) *ClassifiedError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ClassifiedError{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &ClassifiedError{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr), errors.Is(err, context.Canceled):
		return &ClassifiedError{Kind: KindConnectionFailure, Err: err}
	default:
		return &ClassifiedError{Kind: KindBadRequest, Err: err}
	}
}
