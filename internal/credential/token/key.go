package token

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	dErrors "vcproof/pkg/domain-errors"
)

// ParseIssuerKey decodes a hex-encoded Ed25519 public key. An optional 0x
// prefix is tolerated.
//
// Errors: CodeInvalidIssuerKey when the input is not hex or does not decode
// to exactly 32 bytes.
func ParseIssuerKey(issuerKeyHex string) (ed25519.PublicKey, error) {
	trimmed := strings.TrimSpace(issuerKeyHex)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return nil, dErrors.New(dErrors.CodeInvalidIssuerKey, "issuer public key is empty")
	}

	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidIssuerKey, "issuer public key is not valid hex")
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidIssuerKey,
			fmt.Sprintf("issuer public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw)))
	}
	return ed25519.PublicKey(raw), nil
}
