package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"slices"

	"vcproof/internal/attestation"
	"vcproof/internal/credential/engine"
	"vcproof/internal/credential/predicate"
	"vcproof/internal/issuer"
)

const selfCheckSubject = "did:key:zSelfCheck"

// SelfCheck issues a credential under a throwaway key and runs both flows
// over it. It backs the readiness probe and records no metrics.
func (s *Service) SelfCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	iss, err := issuer.Generate(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate issuer: %w", err)
	}
	raw, err := iss.Issue(selfCheckSubject, map[string]any{
		"level":      5,
		s.matchField: "self-check",
	})
	if err != nil {
		return fmt.Errorf("issue credential: %w", err)
	}

	results, err := engine.RunPredicateFlow(raw, iss.PublicKeyHex(), []predicate.Predicate{
		{Field: "level", Condition: predicate.GT, Value: predicate.Int(1), ReturnValue: "ok"},
	})
	if err != nil {
		return fmt.Errorf("predicate flow: %w", err)
	}
	if !slices.Equal(results, []string{"ok"}) {
		return fmt.Errorf("predicate flow returned %v", results)
	}
	if _, err := attestation.NewPredicateJournal(results); err != nil {
		return fmt.Errorf("predicate journal: %w", err)
	}

	subject, err := engine.RunMatchFlow(raw, raw, iss.PublicKeyHex(), s.matchField)
	if err != nil {
		return fmt.Errorf("match flow: %w", err)
	}
	if subject != selfCheckSubject {
		return fmt.Errorf("match flow returned subject %q", subject)
	}
	return nil
}
