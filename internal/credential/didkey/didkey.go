// Package didkey converts Ed25519 public keys to and from did:key identifiers.
//
// Format: did:key:z + base58btc(0xed 0x01 + 32-byte public key).
package didkey

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	dErrors "vcproof/pkg/domain-errors"

	"github.com/mr-tron/base58"
)

// Prefix starts every Ed25519 did:key identifier handled here.
const Prefix = "did:key:z"

// multicodec ed25519-pub
var multicodec = [2]byte{0xed, 0x01}

// Encode returns the did:key identifier of an Ed25519 public key.
func Encode(pub ed25519.PublicKey) string {
	buf := make([]byte, 2+len(pub))
	buf[0] = multicodec[0]
	buf[1] = multicodec[1]
	copy(buf[2:], pub)
	return Prefix + base58.Encode(buf)
}

// Decode extracts the Ed25519 public key from a did:key identifier. A
// fragment (#...) is ignored.
//
// Errors: CodeInvalidIssuerKey for any other DID, a bad base58 body, or a
// wrong multicodec prefix or length.
func Decode(did string) (ed25519.PublicKey, error) {
	if i := strings.IndexByte(did, '#'); i >= 0 {
		did = did[:i]
	}
	if !strings.HasPrefix(did, Prefix) {
		return nil, dErrors.New(dErrors.CodeInvalidIssuerKey, "issuer key is not an ed25519 did:key")
	}

	decoded, err := base58.Decode(did[len(Prefix):])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidIssuerKey, "did:key is not valid base58btc")
	}
	if len(decoded) != 2+ed25519.PublicKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidIssuerKey,
			fmt.Sprintf("did:key decodes to %d bytes, expected %d", len(decoded), 2+ed25519.PublicKeySize))
	}
	if decoded[0] != multicodec[0] || decoded[1] != multicodec[1] {
		return nil, dErrors.New(dErrors.CodeInvalidIssuerKey,
			fmt.Sprintf("unexpected multicodec prefix [%x %x]", decoded[0], decoded[1]))
	}
	return ed25519.PublicKey(decoded[2:]), nil
}

// IsDIDKey reports whether s looks like a did:key identifier.
func IsDIDKey(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "did:key:")
}

// ToHex normalizes an issuer key given either as hex or as did:key into the
// hex form the verifier consumes. Hex input is returned untouched so the
// verifier still reports its own shape errors.
func ToHex(issuerKey string) (string, error) {
	trimmed := strings.TrimSpace(issuerKey)
	if !IsDIDKey(trimmed) {
		return issuerKey, nil
	}
	pub, err := Decode(trimmed)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(pub), nil
}
