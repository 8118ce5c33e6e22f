package jwk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Key use values as they appear in the "use" member of a record.
const (
	UseSignature  = "sig"
	UseEncryption = "enc"
)

// Set represents a decoded JSON Web Key Set document.
type Set struct {
	Keys []Record `json:"keys"`

	// Malformed holds entries of "keys" that are valid JSON but not a
	// record, such as {"kid": 7} or a bare string. They are kept out of
	// Keys so the remaining records stay usable.
	Malformed []MalformedRecord `json:"-"`
}

// MalformedRecord is a "keys" entry that could not be decoded as a Record.
type MalformedRecord struct {
	Raw json.RawMessage
	Err error
}

var errRecordNotObject = errors.New("record is not a JSON object")

// Record is one entry of a key set, kept as close to the wire form as
// possible. Numeric members stay base64url-encoded until a Key exports them.
type Record struct {
	// Key type (e.g., "RSA", "EC")
	Kty string `json:"kty"`
	// Key ID
	Kid string `json:"kid,omitempty"`
	// Use (e.g., "sig", "enc")
	Use string `json:"use,omitempty"`
	// Algorithm
	Alg string `json:"alg,omitempty"`

	// RSA public key components
	N string `json:"n,omitempty"` // Modulus
	E string `json:"e,omitempty"` // Exponent

	// EC public key components
	Crv string `json:"crv,omitempty"` // Curve
	X   string `json:"x,omitempty"`   // X coordinate
	Y   string `json:"y,omitempty"`   // Y coordinate

	raw json.RawMessage
}

// UnmarshalJSON decodes the record and keeps a copy of the original member
// set for key types that need fields beyond the common ones.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the record exactly as it appeared in the document.
// Records built in code rather than decoded are marshaled on demand.
func (r *Record) Raw() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	type plain Record
	return json.Marshal((*plain)(r))
}

// ParseSet decodes a key set document. Only a body that is not JSON is an
// error. A document that is not an object, or whose "keys" member is
// absent or not an array, yields an empty Set. Entries are decoded one by
// one and those that do not fit a Record land in Set.Malformed.
func ParseSet(data []byte) (*Set, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	set := &Set{}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(doc, &members); err != nil {
		return set, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(members["keys"], &entries); err != nil {
		return set, nil
	}

	for _, entry := range entries {
		rec, err := decodeRecord(entry)
		if err != nil {
			set.Malformed = append(set.Malformed, MalformedRecord{Raw: entry, Err: err})
			continue
		}
		set.Keys = append(set.Keys, rec)
	}
	return set, nil
}

func decodeRecord(entry json.RawMessage) (Record, error) {
	var rec Record
	if trimmed := bytes.TrimSpace(entry); len(trimmed) == 0 || trimmed[0] != '{' {
		return rec, errRecordNotObject
	}
	if err := json.Unmarshal(entry, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}
