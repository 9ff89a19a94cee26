package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a fetch failure.
type Kind string

const (
	KindTimeout       Kind = "timeout"
	KindHTTPStatus    Kind = "http_status"
	KindNetwork       Kind = "network"
	KindRenderFailure Kind = "render_failure"
)

// Error is a page-level fetch failure. It is target-local: the pagination
// controller ends the target's pagination on it, the run continues.
type Error struct {
	Kind   Kind
	URL    string
	Status int // set for KindHTTPStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch: http %d from %s", e.Status, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch: %s: %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch: %s: %s", e.Kind, e.URL)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError builds a KindHTTPStatus error for a non-success response.
func StatusError(url string, status int) *Error {
	return &Error{Kind: KindHTTPStatus, URL: url, Status: status}
}

// TransportError classifies a transport-level failure as timeout or network.
func TransportError(url string, err error) *Error {
	kind := KindNetwork
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, URL: url, Err: err}
}

// RenderError classifies a headless rendering failure.
func RenderError(url string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	return &Error{Kind: KindRenderFailure, URL: url, Err: err}
}

// AsError extracts a fetch Error from an error chain.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
