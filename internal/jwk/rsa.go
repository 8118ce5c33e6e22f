package jwk

import (
	"crypto/rsa"
	"math"
	"math/big"
	"regexp"
)

var rsaAlgorithmPattern = regexp.MustCompile(`(?i)^RS(256|384|512)$`)

// RSAKey is an RSA public key taken from a record with kty "RSA".
// The modulus and exponent are decoded when the key is exported.
type RSAKey struct {
	id string
	n  string
	e  string
}

// NewRSAKey is the Factory for RSA records.
func NewRSAKey(rec *Record) (Key, error) {
	return &RSAKey{
		id: rec.Kid,
		n:  rec.N,
		e:  rec.E,
	}, nil
}

// RegisterRSA registers the RSA key type with r.
func RegisterRSA(r *Registry) {
	r.Register(KeyTypeRSA, NewRSAKey)
}

// ID returns the key identifier.
func (k *RSAKey) ID() string {
	return k.id
}

// SupportsAlgorithm reports whether alg is RS256, RS384 or RS512, ignoring case.
func (k *RSAKey) SupportsAlgorithm(alg string) bool {
	return rsaAlgorithmPattern.MatchString(alg)
}

// PublicKey decodes the modulus and exponent into an rsa.PublicKey.
func (k *RSAKey) PublicKey() (*rsa.PublicKey, error) {
	if k.n == "" {
		return nil, NewKeyError(k.id, "missing modulus", ErrMalformedKeyMaterial)
	}
	if k.e == "" {
		return nil, NewKeyError(k.id, "missing exponent", ErrMalformedKeyMaterial)
	}

	nBytes, err := decodeBase64URL(k.n)
	if err != nil {
		return nil, NewKeyError(k.id, "failed to decode modulus", joinMalformed(err))
	}
	eBytes, err := decodeBase64URL(k.e)
	if err != nil {
		return nil, NewKeyError(k.id, "failed to decode exponent", joinMalformed(err))
	}

	n := new(big.Int).SetBytes(nBytes)
	if n.Sign() == 0 {
		return nil, NewKeyError(k.id, "modulus is zero", ErrMalformedKeyMaterial)
	}

	e := new(big.Int).SetBytes(eBytes)
	if e.Sign() == 0 || !e.IsInt64() || e.Int64() > math.MaxInt32 {
		return nil, NewKeyError(k.id, "exponent out of range", ErrMalformedKeyMaterial)
	}

	return &rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}, nil
}

// Export returns the key as CRLF-terminated PEM text.
func (k *RSAKey) Export() (string, error) {
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
