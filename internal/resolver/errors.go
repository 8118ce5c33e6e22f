package resolver

import (
	"errors"
	"fmt"
)

// ErrNoSuitableKey is returned when a key set was retrieved and parsed but
// no record survived filtering.
var ErrNoSuitableKey = errors.New("no suitable key")

// StatusError reports a key set response whose status was not 200.
type StatusError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("Unexpected status %d from %s", e.StatusCode, e.URL)
}

// ParseError reports a key set body that is not a valid JWK Set document.
type ParseError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "Failed to parse JWK Set from " + e.URL
}

// Unwrap returns the decoding error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FetchError reports a transport failure while retrieving a key set.
// Its message is the transport error's own; URL records where it happened.
type FetchError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause == nil {
		return "failed to fetch JWK Set from " + e.URL
	}
	return e.Cause.Error()
}

// Unwrap returns the transport error unchanged.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a FetchError.
func (e *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}
