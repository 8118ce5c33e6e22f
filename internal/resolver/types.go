package resolver

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/jwksfind/internal/jwk"
)

// Use is the intended use of a key as written in a record's "use" member.
type Use string

// Supported key uses.
const (
	UseSignature  Use = jwk.UseSignature
	UseEncryption Use = jwk.UseEncryption
)

// ParseUse maps a configured use to its record form. Both the long names
// and the record forms are accepted, ignoring case.
func ParseUse(s string) (Use, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "signature", "sig":
		return UseSignature, nil
	case "encryption", "enc":
		return UseEncryption, nil
	default:
		return "", fmt.Errorf("unknown key use %q", s)
	}
}

// Config controls resolver policy.
type Config struct {
	// Use is the key use matched against records when Criteria.Use is empty.
	Use Use

	// Secure restricts key set URLs to https. When false, http is
	// accepted as well.
	Secure bool
}

// DefaultConfig returns the signature-use, https-only configuration.
func DefaultConfig() Config {
	return Config{
		Use:    UseSignature,
		Secure: true,
	}
}

// Entity describes the party whose key is being resolved.
type Entity struct {
	// KeySetURL is the location of the entity's JWK Set. Empty means the
	// entity publishes none.
	KeySetURL string
}

// Criteria selects a key from a key set.
type Criteria struct {
	// Use overrides the configured use when non-empty. Any form accepted
	// by ParseUse may be given; other values fail the resolution.
	Use Use

	// Algorithm is the signature algorithm the key must support.
	Algorithm string

	// KeyID prefers the key with this identifier when non-empty.
	KeyID string
}
