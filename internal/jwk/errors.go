package jwk

import (
	"errors"
	"fmt"
)

// Sentinel errors for key handling.
var (
	// ErrMalformedKeyMaterial indicates that a numeric member of a record is
	// missing or is not valid base64url.
	ErrMalformedKeyMaterial = errors.New("malformed key material")

	// ErrUnsupportedCurve indicates that an EC record names a curve no
	// algorithm is defined for.
	ErrUnsupportedCurve = errors.New("unsupported curve")
)

// KeyError represents a key-related error.
type KeyError struct {
	KeyID   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if e.KeyID != "" {
		if e.Cause != nil {
			return fmt.Sprintf("jwk error (kid=%s): %s: %v", e.KeyID, e.Message, e.Cause)
		}
		return fmt.Sprintf("jwk error (kid=%s): %s", e.KeyID, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("jwk error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("jwk error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *KeyError) Is(target error) bool {
	_, ok := target.(*KeyError)
	return ok || errors.Is(e.Cause, target)
}

// NewKeyError creates a new KeyError.
func NewKeyError(keyID, message string, cause error) *KeyError {
	return &KeyError{
		KeyID:   keyID,
		Message: message,
		Cause:   cause,
	}
}

// joinMalformed marks a decoding error as malformed key material while
// keeping the decoder's error reachable.
func joinMalformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedKeyMaterial, err)
}
