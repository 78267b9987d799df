// Package engine composes decoding, verification, extraction and evaluation
// into the two supported flows.
//
// Both flows are straight-line: every stage either feeds the next one or
// ends the run with the first failure. Nothing here reads the clock, draws
// randomness or depends on map iteration order, so identical input always
// produces identical output or the identical failure.
package engine

import (
	"crypto/ed25519"

	"vcproof/internal/credential/match"
	"vcproof/internal/credential/predicate"
	"vcproof/internal/credential/token"
	"vcproof/internal/credential/vc"
)

// DefaultMatchField is the attribute bound by the biometric challenge flow.
const DefaultMatchField = "fingerprint"

// LoadCredential runs decode, verify and extract for one credential.
func LoadCredential(raw, issuerKeyHex string) (vc.View, error) {
	key, err := token.ParseIssuerKey(issuerKeyHex)
	if err != nil {
		return vc.View{}, err
	}
	return loadWithKey(raw, key)
}

func loadWithKey(raw string, key ed25519.PublicKey) (vc.View, error) {
	decoded, err := token.Decode(raw)
	if err != nil {
		return vc.View{}, err
	}
	trusted, err := token.VerifyWithKey(decoded, key)
	if err != nil {
		return vc.View{}, err
	}
	return vc.Extract(trusted)
}

// RunPredicateFlow verifies credential against the issuer key and requires
// every predicate to hold. It returns the predicates' return values in
// input order.
//
// The issuer key is checked before the credential is looked at, and the
// predicates are validated before any cryptographic work.
func RunPredicateFlow(credential, issuerKeyHex string, predicates []predicate.Predicate) ([]string, error) {
	key, err := token.ParseIssuerKey(issuerKeyHex)
	if err != nil {
		return nil, err
	}
	if err := predicate.ValidateAll(predicates); err != nil {
		return nil, err
	}
	view, err := loadWithKey(credential, key)
	if err != nil {
		return nil, err
	}
	return predicate.Evaluate(view, predicates)
}

// RunPredicateFlowEach is RunPredicateFlow with per-predicate outcomes
// instead of the all-or-nothing policy. Trust failures still end the run.
func RunPredicateFlowEach(credential, issuerKeyHex string, predicates []predicate.Predicate) ([]predicate.Outcome, error) {
	key, err := token.ParseIssuerKey(issuerKeyHex)
	if err != nil {
		return nil, err
	}
	if err := predicate.ValidateAll(predicates); err != nil {
		return nil, err
	}
	view, err := loadWithKey(credential, key)
	if err != nil {
		return nil, err
	}
	return predicate.EvaluateEach(view, predicates), nil
}

// RunMatchFlow verifies both credentials against the same issuer key and
// returns their shared subject when they also agree on field.
func RunMatchFlow(credentialA, credentialB, issuerKeyHex, field string) (string, error) {
	return RunMatchFlowWithKeys(credentialA, issuerKeyHex, credentialB, issuerKeyHex, field)
}

// RunMatchFlowWithKeys is RunMatchFlow for credentials from two issuers.
func RunMatchFlowWithKeys(credentialA, issuerKeyA, credentialB, issuerKeyB, field string) (string, error) {
	a, err := LoadCredential(credentialA, issuerKeyA)
	if err != nil {
		return "", err
	}
	b, err := LoadCredential(credentialB, issuerKeyB)
	if err != nil {
		return "", err
	}
	return match.Subject(a, b, field)
}
