// Package models holds the request and result shapes of the proof service.
package models

import (
	"fmt"

	"vcproof/internal/attestation"
	"vcproof/internal/credential/predicate"
	dErrors "vcproof/pkg/domain-errors"
	"vcproof/pkg/platform/validation"
)

// Flow names a kind of verification run. It labels metrics, spans and logs.
type Flow string

const (
	FlowPredicates   Flow = "predicates"
	FlowSubjectMatch Flow = "subject_match"
)

// PredicateRequest asks for a credential to be verified and a predicate list
// evaluated against it. An empty IssuerPublicKey selects the service default.
type PredicateRequest struct {
	Credential      string
	IssuerPublicKey string
	Predicates      []predicate.Predicate
}

// Validate checks sizes and required fields. Predicate shapes are checked by
// the engine so the failing index is reported the same way everywhere.
func (r *PredicateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.First(
		validation.MaxLen("credential", validation.MaxCredentialLength, r.Credential),
		validation.MaxLen("issuer_public_key", validation.MaxIssuerKeyLength, r.IssuerPublicKey),
		validation.MaxCount("predicates", len(r.Predicates), validation.MaxPredicates),
	); err != nil {
		return err
	}
	for i, p := range r.Predicates {
		if err := validation.First(
			validation.MaxLen(fmt.Sprintf("predicate %d: field", i), validation.MaxFieldNameLength, p.Field),
			validation.MaxLen(fmt.Sprintf("predicate %d: return_value", i), validation.MaxReturnValueLength, p.ReturnValue),
		); err != nil {
			return err
		}
	}
	return validation.Required("credential", r.Credential)
}

// MatchRequest asks whether two credentials share a subject and a claim.
// ChallengeIssuerPublicKey is only set when the two credentials come from
// different issuers; Field defaults to the service match field.
type MatchRequest struct {
	OnboardingCredential     string
	ChallengeCredential      string
	IssuerPublicKey          string
	ChallengeIssuerPublicKey string
	Field                    string
}

// Validate checks sizes and required fields.
func (r *MatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.First(
		validation.MaxLen("credential", validation.MaxCredentialLength, r.OnboardingCredential, r.ChallengeCredential),
		validation.MaxLen("issuer_public_key", validation.MaxIssuerKeyLength, r.IssuerPublicKey, r.ChallengeIssuerPublicKey),
		validation.MaxLen("field", validation.MaxFieldNameLength, r.Field),
		validation.Required("onboarding_credential", r.OnboardingCredential),
		validation.Required("challenge_credential", r.ChallengeCredential),
	)
}

// Attestation is the committed output of one successful run.
type Attestation struct {
	RunID   string
	Flow    Flow
	Journal *attestation.Journal
}

// Results returns the satisfied return values of a predicate run.
func (a *Attestation) Results() []string {
	if a == nil || a.Journal == nil {
		return nil
	}
	return a.Journal.Results
}

// Subject returns the shared subject of a match run.
func (a *Attestation) Subject() string {
	if a == nil || a.Journal == nil {
		return ""
	}
	return a.Journal.Subject
}

// BatchItem is the outcome of one request of a batch, at the request's
// position. Exactly one of Attestation and Err is set.
type BatchItem struct {
	Index       int
	Attestation *Attestation
	Err         error
}
