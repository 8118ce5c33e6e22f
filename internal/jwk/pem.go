package jwk

import (
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	pemHeader     = "-----BEGIN PUBLIC KEY-----"
	pemFooter     = "-----END PUBLIC KEY-----"
	pemLineLength = 64
	crlf          = "\r\n"
)

// EncodePublicKeyPEM serializes pub as SubjectPublicKeyInfo and armors it.
// encoding/pem is not used because it terminates lines with LF only.
func EncodePublicKeyPEM(pub any) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	body := base64.StdEncoding.EncodeToString(der)

	var b strings.Builder
	b.Grow(len(body) + len(body)/pemLineLength*2 + len(pemHeader) + len(pemFooter) + 8)

	b.WriteString(pemHeader)
	b.WriteString(crlf)
	for len(body) > pemLineLength {
		b.WriteString(body[:pemLineLength])
		b.WriteString(crlf)
		body = body[pemLineLength:]
	}
	if body != "" {
		b.WriteString(body)
		b.WriteString(crlf)
	}
	b.WriteString(pemFooter)
	b.WriteString(crlf)

	return b.String(), nil
}

// decodeBase64URL decodes an unpadded base64url member. Trailing padding
// is tolerated.
func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
