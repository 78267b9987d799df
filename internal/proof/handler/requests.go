package handler

import (
	"strings"

	"vcproof/internal/credential/predicate"
	"vcproof/internal/proof/models"
	dErrors "vcproof/pkg/domain-errors"
	"vcproof/pkg/platform/validation"
)

// PredicateProofRequest asks for a credential to be verified against a
// predicate list.
type PredicateProofRequest struct {
	Credential      string                `json:"credential"`
	IssuerPublicKey string                `json:"issuer_public_key,omitempty"`
	Predicates      []predicate.Predicate `json:"predicates"`
}

// Normalize trims whitespace that copy-pasted tokens and keys tend to carry.
func (r *PredicateProofRequest) Normalize() {
	if r == nil {
		return
	}
	r.Credential = strings.TrimSpace(r.Credential)
	r.IssuerPublicKey = strings.TrimSpace(r.IssuerPublicKey)
}

// Validate checks that the request is well-formed.
func (r *PredicateProofRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := r.ToModel().Validate(); err != nil {
		return err
	}
	return predicate.ValidateAll(r.Predicates)
}

// ToModel converts the request into the service shape.
func (r *PredicateProofRequest) ToModel() *models.PredicateRequest {
	if r == nil {
		return nil
	}
	return &models.PredicateRequest{
		Credential:      r.Credential,
		IssuerPublicKey: r.IssuerPublicKey,
		Predicates:      r.Predicates,
	}
}

// MatchProofRequest asks whether two credentials belong to the same holder.
type MatchProofRequest struct {
	OnboardingCredential     string `json:"onboarding_credential"`
	ChallengeCredential      string `json:"challenge_credential"`
	IssuerPublicKey          string `json:"issuer_public_key,omitempty"`
	ChallengeIssuerPublicKey string `json:"challenge_issuer_public_key,omitempty"`
	Field                    string `json:"field,omitempty"`
}

// Normalize trims whitespace around tokens, keys and the field name.
func (r *MatchProofRequest) Normalize() {
	if r == nil {
		return
	}
	r.OnboardingCredential = strings.TrimSpace(r.OnboardingCredential)
	r.ChallengeCredential = strings.TrimSpace(r.ChallengeCredential)
	r.IssuerPublicKey = strings.TrimSpace(r.IssuerPublicKey)
	r.ChallengeIssuerPublicKey = strings.TrimSpace(r.ChallengeIssuerPublicKey)
	r.Field = strings.TrimSpace(r.Field)
}

// Validate checks that the request is well-formed.
func (r *MatchProofRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return r.ToModel().Validate()
}

// ToModel converts the request into the service shape.
func (r *MatchProofRequest) ToModel() *models.MatchRequest {
	if r == nil {
		return nil
	}
	return &models.MatchRequest{
		OnboardingCredential:     r.OnboardingCredential,
		ChallengeCredential:      r.ChallengeCredential,
		IssuerPublicKey:          r.IssuerPublicKey,
		ChallengeIssuerPublicKey: r.ChallengeIssuerPublicKey,
		Field:                    r.Field,
	}
}

// BatchProofRequest carries independent predicate requests.
type BatchProofRequest struct {
	Requests []*PredicateProofRequest `json:"requests"`
}

func (r *BatchProofRequest) Normalize() {
	if r == nil {
		return
	}
	for _, req := range r.Requests {
		req.Normalize()
	}
}

// Validate only checks the batch envelope. Items are validated by their own
// runs so one bad item does not reject the whole batch.
func (r *BatchProofRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.MaxCount("requests", len(r.Requests), validation.MaxBatchSize); err != nil {
		return err
	}
	if len(r.Requests) == 0 {
		return dErrors.New(dErrors.CodeValidation, "requests are required")
	}
	return nil
}

// ToModels converts every item. Items that fail their own validation are
// passed through so the service reports them at their index.
func (r *BatchProofRequest) ToModels() []*models.PredicateRequest {
	out := make([]*models.PredicateRequest, len(r.Requests))
	for i, req := range r.Requests {
		out[i] = req.ToModel()
	}
	return out
}
