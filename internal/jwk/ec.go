package jwk

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// curveAlgorithms maps each supported curve to the one signature
// algorithm defined for it.
var curveAlgorithms = map[string]string{
	"P-256": "ES256",
	"P-384": "ES384",
	"P-521": "ES512",
}

// ECKey is an elliptic-curve public key taken from a record with kty "EC".
// Parsing is delegated to jwx when the key is exported.
type ECKey struct {
	id  string
	crv string
	rec *Record
}

// NewECKey is the Factory for EC records.
func NewECKey(rec *Record) (Key, error) {
	return &ECKey{
		id:  rec.Kid,
		crv: rec.Crv,
		rec: rec,
	}, nil
}

// RegisterEC registers the EC key type with r.
func RegisterEC(r *Registry) {
	r.Register(KeyTypeEC, NewECKey)
}

// ID returns the key identifier.
func (k *ECKey) ID() string {
	return k.id
}

// SupportsAlgorithm reports whether alg is the algorithm paired with the
// key's curve, ignoring case.
func (k *ECKey) SupportsAlgorithm(alg string) bool {
	want, ok := curveAlgorithms[k.crv]
	if !ok || alg == "" {
		return false
	}
	return strings.EqualFold(alg, want)
}

// PublicKey parses the record into an ecdsa.PublicKey.
func (k *ECKey) PublicKey() (*ecdsa.PublicKey, error) {
	if _, ok := curveAlgorithms[k.crv]; !ok {
		return nil, NewKeyError(k.id, fmt.Sprintf("curve %q", k.crv), ErrUnsupportedCurve)
	}
	if k.rec.X == "" || k.rec.Y == "" {
		return nil, NewKeyError(k.id, "missing curve point", ErrMalformedKeyMaterial)
	}

	data, err := k.rec.Raw()
	if err != nil {
		return nil, NewKeyError(k.id, "failed to read record", err)
	}

	parsed, err := jwk.ParseKey(data)
	if err != nil {
		return nil, NewKeyError(k.id, "failed to parse key", joinMalformed(err))
	}

	var raw interface{}
	if err := parsed.Raw(&raw); err != nil {
		return nil, NewKeyError(k.id, "failed to materialize key", joinMalformed(err))
	}

	pub, ok := raw.(*ecdsa.PublicKey)
	if !ok {
		return nil, NewKeyError(k.id, fmt.Sprintf("unexpected key type %T", raw), ErrMalformedKeyMaterial)
	}
	return pub, nil
}

// Export returns the key as CRLF-terminated PEM text.
func (k *ECKey) Export() (string, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return "", err
	}

	pemText, err := EncodePublicKeyPEM(pub)
	if err != nil {
		return "", NewKeyError(k.id, "failed to encode public key", err)
	}
	return pemText, nil
}
