// Package token decodes and verifies JWT-shaped verifiable credentials.
//
// Decode splits a compact token into its segments without making any trust
// decision. Verify is the single trust boundary of the engine: it checks the
// Ed25519 signature over the exact transmitted header.payload bytes against a
// caller-supplied issuer key and only then hands out TrustedClaims. A payload
// that does not decode is reported only after its signature checked out, so
// any change to the signed bytes surfaces as a signature failure.
//
// Nothing in this package reads the clock, so registered time claims (exp,
// nbf, iat) are carried but never validated.
package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dErrors "vcproof/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTokenLength bounds the compact serialization accepted by Decode.
const MaxTokenLength = 64 * 1024

// Decoded is a parsed but untrusted credential.
type Decoded struct {
	algorithm    string
	header       map[string]any
	signingInput string
	signature    []byte
	claims       jwt.MapClaims
	claimsErr    error
}

// Algorithm returns the header's alg value, empty when absent or not a string.
func (d *Decoded) Algorithm() string { return d.algorithm }

// HeaderValue returns a header parameter.
func (d *Decoded) HeaderValue(name string) (any, bool) {
	v, ok := d.header[name]
	return v, ok
}

// SigningInput returns header.payload exactly as transmitted.
func (d *Decoded) SigningInput() []byte { return []byte(d.signingInput) }

// Signature returns a copy of the decoded signature bytes.
func (d *Decoded) Signature() []byte {
	out := make([]byte, len(d.signature))
	copy(out, d.signature)
	return out
}

// UnverifiedClaim returns a payload claim before any signature check. Callers
// must not make trust decisions on it. Nothing is returned when the payload
// did not decode.
func (d *Decoded) UnverifiedClaim(name string) (any, bool) {
	v, ok := d.claims[name]
	if !ok {
		return nil, false
	}
	return cloneJSON(v), true
}

func newParser() *jwt.Parser {
	return jwt.NewParser(jwt.WithJSONNumber(), jwt.WithStrictDecoding())
}

// Decode parses a compact three-segment token.
//
// Errors: CodeMalformedCredential on size, segment count, header or signature
// encoding violations. Payload encoding and JSON errors are kept and reported
// by Verify once the signature has been checked. An unknown or missing alg is
// recorded, not rejected; Verify reports it as CodeUnsupportedAlgorithm.
func Decode(raw string) (*Decoded, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeMalformedCredential, "credential is empty")
	}
	if len(raw) > MaxTokenLength {
		return nil, dErrors.New(dErrors.CodeMalformedCredential, fmt.Sprintf("credential exceeds %d bytes", MaxTokenLength))
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, dErrors.New(dErrors.CodeMalformedCredential, "credential must have exactly three segments")
	}

	p := newParser()
	headerJSON, err := p.DecodeSegment(parts[0])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedCredential, "header segment is not base64url")
	}
	header, err := decodeObject(headerJSON)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedCredential, "header is not a json object")
	}

	signature, err := p.DecodeSegment(parts[2])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedCredential, "signature segment is not base64url")
	}

	alg, _ := header["alg"].(string)
	d := &Decoded{
		algorithm:    alg,
		header:       header,
		signingInput: parts[0] + "." + parts[1],
		signature:    signature,
	}

	payload, err := p.DecodeSegment(parts[1])
	if err != nil {
		d.claimsErr = dErrors.Wrap(err, dErrors.CodeMalformedCredential, "payload segment is not base64url")
		return d, nil
	}
	claims, err := decodeObject(payload)
	if err != nil {
		d.claimsErr = dErrors.Wrap(err, dErrors.CodeMalformedCredential, "payload is not a json object")
		return d, nil
	}
	d.claims = claims
	return d, nil
}

// decodeObject reads exactly one JSON object, keeping numbers as json.Number.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("expected a json object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after json object")
	}
	return out, nil
}

// cloneJSON deep-copies a value produced by encoding/json.
func cloneJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneJSON(item)
		}
		return out
	case jwt.MapClaims:
		return cloneJSON(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneJSON(item)
		}
		return out
	default:
		return t
	}
}
