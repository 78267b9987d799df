// Package issuer signs JWT verifiable credentials with Ed25519.
//
// It stands in for a credential issuer in local development, fixtures and
// tests. Signing is deterministic: the same key, subject, attributes and
// options always yield the same token.
package issuer

import (
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"time"

	"vcproof/internal/credential/didkey"
	dErrors "vcproof/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
)

// Defaults applied to the "vc" envelope when no option overrides them.
var (
	DefaultContext = []string{"https://www.w3.org/2018/credentials/v1"}
	DefaultTypes   = []string{"VerifiableCredential"}
)

// Envelope is the "vc" claim of a JWT credential.
type Envelope struct {
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	CredentialSubject map[string]any `json:"credentialSubject"`
}

// CredentialClaims is the payload of a JWT credential.
type CredentialClaims struct {
	VC Envelope `json:"vc"`
	jwt.RegisteredClaims
}

// Issuer holds an Ed25519 signing identity.
type Issuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	did        string
}

// NewFromSeed derives an issuer from a 32-byte seed.
func NewFromSeed(seed []byte) (*Issuer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "issuer seed must be 32 bytes")
	}
	return fromPrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

// NewFromSeedHex derives an issuer from a hex-encoded 32-byte seed.
func NewFromSeedHex(seedHex string) (*Issuer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "issuer seed is not valid hex")
	}
	return NewFromSeed(seed)
}

// Generate creates a fresh issuer from the given entropy source.
func Generate(rand io.Reader) (*Issuer, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate ed25519 key")
	}
	return fromPrivateKey(priv), nil
}

func fromPrivateKey(priv ed25519.PrivateKey) *Issuer {
	pub := priv.Public().(ed25519.PublicKey)
	return &Issuer{
		privateKey: priv,
		publicKey:  pub,
		did:        didkey.Encode(pub),
	}
}

// PublicKey returns the issuer's public key.
func (i *Issuer) PublicKey() ed25519.PublicKey {
	out := make(ed25519.PublicKey, len(i.publicKey))
	copy(out, i.publicKey)
	return out
}

// PublicKeyHex returns the public key in the hex form verifiers consume.
func (i *Issuer) PublicKeyHex() string {
	return hex.EncodeToString(i.publicKey)
}

// SeedHex returns the private seed, hex-encoded.
func (i *Issuer) SeedHex() string {
	return hex.EncodeToString(i.privateKey.Seed())
}

// DID returns the issuer's did:key identifier, used as the default iss.
func (i *Issuer) DID() string {
	return i.did
}

type issueConfig struct {
	issuerID string
	types    []string
	context  []string
	issuedAt time.Time
	expires  time.Time
	id       string
	alg      jwt.SigningMethod
}

// IssueOption customizes a credential.
type IssueOption func(*issueConfig)

// WithTypes replaces the credential types.
func WithTypes(types ...string) IssueOption {
	return func(c *issueConfig) { c.types = types }
}

// WithContext replaces the @context entries.
func WithContext(context ...string) IssueOption {
	return func(c *issueConfig) { c.context = context }
}

// WithIssuerID overrides the iss claim.
func WithIssuerID(iss string) IssueOption {
	return func(c *issueConfig) { c.issuerID = iss }
}

// WithIssuedAt sets iat and nbf. Time is supplied by the caller so tokens
// stay reproducible.
func WithIssuedAt(t time.Time) IssueOption {
	return func(c *issueConfig) { c.issuedAt = t }
}

// WithExpiry sets exp.
func WithExpiry(t time.Time) IssueOption {
	return func(c *issueConfig) { c.expires = t }
}

// WithID sets the jti claim.
func WithID(id string) IssueOption {
	return func(c *issueConfig) { c.id = id }
}

// Issue signs a credential about subject carrying credentialSubject.
func (i *Issuer) Issue(subject string, credentialSubject map[string]any, opts ...IssueOption) (string, error) {
	if subject == "" {
		return "", dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if credentialSubject == nil {
		credentialSubject = map[string]any{}
	}

	cfg := issueConfig{
		issuerID: i.did,
		types:    DefaultTypes,
		context:  DefaultContext,
		alg:      jwt.SigningMethodEdDSA,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	claims := CredentialClaims{
		VC: Envelope{
			Context:           cfg.context,
			Type:              cfg.types,
			CredentialSubject: credentialSubject,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  cfg.issuerID,
			Subject: subject,
			ID:      cfg.id,
		},
	}
	if !cfg.issuedAt.IsZero() {
		claims.IssuedAt = jwt.NewNumericDate(cfg.issuedAt)
		claims.NotBefore = jwt.NewNumericDate(cfg.issuedAt)
	}
	if !cfg.expires.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(cfg.expires)
	}

	signed, err := jwt.NewWithClaims(cfg.alg, claims).SignedString(i.privateKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign credential")
	}
	return signed, nil
}

// IssueClaims signs an arbitrary claim set. It exists for fixtures that need
// payloads outside the credential envelope.
func (i *Issuer) IssueClaims(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(i.privateKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign claims")
	}
	return signed, nil
}

// DecodeDIDKey returns the public key behind an Ed25519 did:key identifier.
func DecodeDIDKey(did string) (ed25519.PublicKey, error) {
	return didkey.Decode(did)
}
