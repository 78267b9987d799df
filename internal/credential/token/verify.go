package token

import (
	"crypto/ed25519"

	dErrors "vcproof/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
)

// SupportedAlgorithm is the only JOSE algorithm the verifier accepts.
var SupportedAlgorithm = jwt.SigningMethodEdDSA.Alg()

// TrustedClaims is a claim set whose signature has been checked against the
// issuer key. The only way to obtain one is Verify; it cannot be mutated
// after construction.
type TrustedClaims struct {
	claims jwt.MapClaims
}

// Lookup returns a deep copy of a top-level claim.
func (t *TrustedClaims) Lookup(name string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.claims[name]
	if !ok {
		return nil, false
	}
	return cloneJSON(v), true
}

// Len returns the number of top-level claims.
func (t *TrustedClaims) Len() int {
	if t == nil {
		return 0
	}
	return len(t.claims)
}

// Verify checks the decoded credential against a hex-encoded issuer key.
//
// Order of checks: issuer key shape, then algorithm, then signature, then the
// payload. The key is validated before any cryptographic work runs.
//
// Errors: CodeInvalidIssuerKey, CodeUnsupportedAlgorithm, CodeSignatureInvalid,
// CodeMalformedCredential.
func Verify(d *Decoded, issuerKeyHex string) (*TrustedClaims, error) {
	key, err := ParseIssuerKey(issuerKeyHex)
	if err != nil {
		return nil, err
	}
	return VerifyWithKey(d, key)
}

// VerifyWithKey is Verify for an already parsed key.
func VerifyWithKey(d *Decoded, key ed25519.PublicKey) (*TrustedClaims, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidIssuerKey, "issuer public key must be 32 bytes")
	}
	if d == nil {
		return nil, dErrors.New(dErrors.CodeMalformedCredential, "credential is missing")
	}
	if d.algorithm != SupportedAlgorithm {
		return nil, dErrors.New(dErrors.CodeUnsupportedAlgorithm, "credential must be signed with "+SupportedAlgorithm)
	}

	if err := jwt.SigningMethodEdDSA.Verify(d.signingInput, d.signature, key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSignatureInvalid, "credential signature does not match issuer key")
	}
	if d.claimsErr != nil {
		return nil, d.claimsErr
	}

	return &TrustedClaims{claims: cloneJSON(d.claims).(map[string]any)}, nil
}
