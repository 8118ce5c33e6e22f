package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// IsTransient reports whether err looks like a transport failure worth
// another attempt: timeouts, refused or reset connections, and
// connections closed mid-response. Context cancellation is never
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	return false
}

// IsRetryableStatus reports whether an HTTP status code indicates a
// server-side failure that may clear on a later attempt.
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}

// Any combines conditions with OR logic.
func Any(conditions ...ShouldRetryFunc) ShouldRetryFunc {
	return func(err error) bool {
		for _, condition := range conditions {
			if condition(err) {
				return true
			}
		}
		return false
	}
}
