// Package jwk turns JSON Web Key records into public keys.
//
// A fetched key set is decoded into a Set of Record values. Records are
// converted into typed Key values by a Registry, which maps the "kty" tag of
// a record to a Factory. Unknown key types are skipped rather than rejected,
// so a key set that mixes supported and unsupported keys stays usable.
//
// # Key Types
//
//   - RSA: registered by NewDefaultRegistry. Supports RS256, RS384, RS512.
//   - EC: opt-in via RegisterEC. Supports ES256, ES384, ES512.
//
// # Export
//
// Every Key exports a PEM-armored SubjectPublicKeyInfo block. The block uses
// CRLF line endings and wraps the base64 body at 64 columns:
//
//	reg := jwk.NewDefaultRegistry()
//	key, ok, err := reg.Create(&record)
//	if err != nil || !ok {
//	    // skip record
//	}
//	if key.SupportsAlgorithm("RS256") {
//	    pem, err := key.Export()
//	}
//
// Key material is decoded lazily: a malformed modulus or exponent is only
// reported when Export is called.
package jwk
