package service

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"vcproof/internal/attestation"
	"vcproof/internal/credential/predicate"
	"vcproof/internal/issuer"
	"vcproof/internal/proof/metrics"
	"vcproof/internal/proof/models"
	"vcproof/internal/proof/tracer"
	dErrors "vcproof/pkg/domain-errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

// recordingTracer keeps every finished span so tests can inspect outcomes.
type recordingTracer struct {
	mu    sync.Mutex
	spans []*recordedSpan
}

type recordedSpan struct {
	tr    *recordingTracer
	name  string
	attrs map[string]any
	err   error
	ended bool
}

func (t *recordingTracer) Start(ctx context.Context, name string, attrs ...tracer.Attribute) (context.Context, tracer.Span) {
	span := &recordedSpan{tr: t, name: name, attrs: map[string]any{}}
	span.SetAttributes(attrs...)
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return ctx, span
}

func (s *recordedSpan) End(err error) {
	s.tr.mu.Lock()
	defer s.tr.mu.Unlock()
	s.err = err
	s.ended = true
}

func (s *recordedSpan) SetAttributes(attrs ...tracer.Attribute) {
	s.tr.mu.Lock()
	defer s.tr.mu.Unlock()
	for _, a := range attrs {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) AddEvent(string, ...tracer.Attribute) {}

func (t *recordingTracer) named(name string) []*recordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*recordedSpan
	for _, sp := range t.spans {
		if sp.name == name {
			out = append(out, sp)
		}
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	issuer  *issuer.Issuer
	other   *issuer.Issuer
	logs    *bytes.Buffer
	tracer  *recordingTracer
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupSuite() {
	var err error
	s.issuer, err = issuer.NewFromSeed(bytes.Repeat([]byte{0x11}, ed25519.SeedSize))
	s.Require().NoError(err)
	s.other, err = issuer.NewFromSeed(bytes.Repeat([]byte{0x22}, ed25519.SeedSize))
	s.Require().NoError(err)
}

func (s *ServiceSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	s.tracer = &recordingTracer{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	var counter int
	var mu sync.Mutex
	s.service = New(
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithMetrics(s.metrics),
		WithTracer(s.tracer),
		WithRunIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			counter++
			return fmt.Sprintf("run-%d", counter)
		}),
	)
}

func (s *ServiceSuite) issue(iss *issuer.Issuer, subject string, attrs map[string]any) string {
	raw, err := iss.Issue(subject, attrs)
	s.Require().NoError(err)
	return raw
}

func (s *ServiceSuite) person(dob int) string {
	return s.issue(s.issuer, "did:key:zHolder", map[string]any{
		"date_of_birth": dob,
		"nationality":   "NO",
		"name":          "Kari Nordmann",
		"fingerprint":   "F1-secret",
	})
}

func olderThan40() predicate.Predicate {
	return predicate.Predicate{Field: "date_of_birth", Condition: predicate.GT, Value: predicate.Int(19791001), ReturnValue: "older than 40"}
}

func norwegian() predicate.Predicate {
	return predicate.Predicate{Field: "nationality", Condition: predicate.EQ, Value: predicate.Text("NO"), ReturnValue: "norwegian"}
}

func (s *ServiceSuite) TestProvePredicates() {
	s.Run("all predicates hold", func() {
		att, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
			Credential:      s.person(19850101),
			IssuerPublicKey: s.issuer.PublicKeyHex(),
			Predicates:      []predicate.Predicate{olderThan40(), norwegian()},
		})
		s.Require().NoError(err)
		s.Equal(models.FlowPredicates, att.Flow)
		s.NotEmpty(att.RunID)
		s.Equal([]string{"older than 40", "norwegian"}, att.Results())

		decoded, err := attestation.DecodePredicateJournal(att.Journal.Encoded)
		s.Require().NoError(err)
		s.Equal(att.Results(), decoded)
		s.Equal(attestation.Digest(att.Journal.Encoded), att.Journal.Digest)
	})

	s.Run("did:key issuer form", func() {
		att, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
			Credential:      s.person(19850101),
			IssuerPublicKey: s.issuer.DID(),
			Predicates:      []predicate.Predicate{norwegian()},
		})
		s.Require().NoError(err)
		s.Equal([]string{"norwegian"}, att.Results())
	})

	s.Run("failing predicate reports index and code", func() {
		_, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
			Credential:      s.person(19700101),
			IssuerPublicKey: s.issuer.PublicKeyHex(),
			Predicates:      []predicate.Predicate{norwegian(), olderThan40()},
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePredicateNotSatisfied))
		var nse *predicate.NotSatisfiedError
		s.Require().True(errors.As(err, &nse))
		s.Equal(1, nse.Index)
	})

	s.Run("empty predicate list commits an empty journal", func() {
		att, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
			Credential:      s.person(19850101),
			IssuerPublicKey: s.issuer.PublicKeyHex(),
		})
		s.Require().NoError(err)
		s.Empty(att.Results())
	})

	s.Run("wrong issuer key", func() {
		_, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
			Credential:      s.person(19850101),
			IssuerPublicKey: s.other.PublicKeyHex(),
			Predicates:      []predicate.Predicate{norwegian()},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeSignatureInvalid))
	})

	s.Run("missing issuer key without default", func() {
		_, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
			Credential: s.person(19850101),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid request", func() {
		_, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.ProvePredicates(context.Background(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.service.ProvePredicates(ctx, &models.PredicateRequest{
			Credential:      s.person(19850101),
			IssuerPublicKey: s.issuer.PublicKeyHex(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *ServiceSuite) TestDefaultIssuerKey() {
	svc := New(WithDefaultIssuerKey(s.issuer.DID()))
	att, err := svc.ProvePredicates(context.Background(), &models.PredicateRequest{
		Credential: s.person(19850101),
		Predicates: []predicate.Predicate{norwegian()},
	})
	s.Require().NoError(err)
	s.Equal([]string{"norwegian"}, att.Results())

	_, err = svc.ProvePredicates(context.Background(), &models.PredicateRequest{
		Credential:      s.person(19850101),
		IssuerPublicKey: s.other.PublicKeyHex(),
		Predicates:      []predicate.Predicate{norwegian()},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeSignatureInvalid), "an explicit key overrides the default")
}

func (s *ServiceSuite) TestObservability() {
	_, err := s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
		Credential:      s.person(19850101),
		IssuerPublicKey: s.issuer.PublicKeyHex(),
		Predicates:      []predicate.Predicate{olderThan40(), norwegian()},
	})
	s.Require().NoError(err)
	_, err = s.service.ProvePredicates(context.Background(), &models.PredicateRequest{
		Credential:      s.person(19700101),
		IssuerPublicKey: s.issuer.PublicKeyHex(),
		Predicates:      []predicate.Predicate{olderThan40()},
	})
	s.Require().Error(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Runs.WithLabelValues("predicates", metrics.OutcomeOK)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Runs.WithLabelValues("predicates", "predicate_not_satisfied")))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.PredicatesEvaluated))

	spans := s.tracer.named(tracer.SpanPredicates)
	s.Require().Len(spans, 2)
	s.True(spans[0].ended)
	s.Equal("run-1", spans[0].attrs[tracer.AttrRunID])
	s.Equal(metrics.OutcomeOK, spans[0].attrs[tracer.AttrOutcome])
	s.IsType(time.Duration(0), spans[0].attrs[tracer.AttrDuration])
	s.NoError(spans[0].err)
	s.Equal("predicate_not_satisfied", spans[1].attrs[tracer.AttrOutcome])
	s.Equal(int64(0), spans[1].attrs[tracer.AttrFailedIndex])
	s.Error(spans[1].err)

	logs := s.logs.String()
	s.Contains(logs, `"predicate_index":0`)
	s.Contains(logs, `"code":"predicate_not_satisfied"`)
	s.NotContains(logs, "Kari Nordmann")
	s.NotContains(logs, "F1-secret")
	s.NotContains(logs, "19700101")
}

func (s *ServiceSuite) TestProveSubjectMatch() {
	onboarding := s.issue(s.issuer, "did:key:zABC", map[string]any{"fingerprint": "F1"})

	s.Run("same subject and fingerprint", func() {
		att, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: onboarding,
			ChallengeCredential:  s.issue(s.issuer, "did:key:zABC", map[string]any{"fingerprint": "F1"}),
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
		})
		s.Require().NoError(err)
		s.Equal(models.FlowSubjectMatch, att.Flow)
		s.Equal("did:key:zABC", att.Subject())

		subject, err := attestation.DecodeMatchJournal(att.Journal.Encoded)
		s.Require().NoError(err)
		s.Equal("did:key:zABC", subject)

		spans := s.tracer.named(tracer.SpanSubjectMatch)
		s.Require().NotEmpty(spans)
		last := spans[len(spans)-1]
		s.Equal(tracer.HashSubject("did:key:zABC"), last.attrs[tracer.AttrSubjectHash])
		s.Equal("fingerprint", last.attrs[tracer.AttrMatchField])
	})

	s.Run("different fingerprint", func() {
		_, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: onboarding,
			ChallengeCredential:  s.issue(s.issuer, "did:key:zABC", map[string]any{"fingerprint": "F2"}),
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeFieldMismatch))
	})

	s.Run("different subject", func() {
		_, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: onboarding,
			ChallengeCredential:  s.issue(s.issuer, "did:key:zXYZ", map[string]any{"fingerprint": "F1"}),
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeSubjectMismatch))
	})

	s.Run("custom field", func() {
		att, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: s.issue(s.issuer, "did:key:zABC", map[string]any{"face_hash": "H1"}),
			ChallengeCredential:  s.issue(s.issuer, "did:key:zABC", map[string]any{"face_hash": "H1"}),
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
			Field:                "face_hash",
		})
		s.Require().NoError(err)
		s.Equal("did:key:zABC", att.Subject())
	})

	s.Run("second issuer", func() {
		challenge := s.issue(s.other, "did:key:zABC", map[string]any{"fingerprint": "F1"})
		_, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: onboarding,
			ChallengeCredential:  challenge,
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeSignatureInvalid), "one key verifies both credentials by default")

		att, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential:     onboarding,
			ChallengeCredential:      challenge,
			IssuerPublicKey:          s.issuer.PublicKeyHex(),
			ChallengeIssuerPublicKey: s.other.DID(),
		})
		s.Require().NoError(err)
		s.Equal("did:key:zABC", att.Subject())
	})

	s.Run("configured match field", func() {
		svc := New(WithMatchField("face_hash"))
		att, err := svc.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: s.issue(s.issuer, "did:key:zABC", map[string]any{"face_hash": "H1"}),
			ChallengeCredential:  s.issue(s.issuer, "did:key:zABC", map[string]any{"face_hash": "H1"}),
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
		})
		s.Require().NoError(err)
		s.Equal("did:key:zABC", att.Subject())
	})

	s.Run("missing challenge", func() {
		_, err := s.service.ProveSubjectMatch(context.Background(), &models.MatchRequest{
			OnboardingCredential: onboarding,
			IssuerPublicKey:      s.issuer.PublicKeyHex(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestProveBatch() {
	good := &models.PredicateRequest{
		Credential:      s.person(19850101),
		IssuerPublicKey: s.issuer.PublicKeyHex(),
		Predicates:      []predicate.Predicate{olderThan40()},
	}
	failing := &models.PredicateRequest{
		Credential:      s.person(19700101),
		IssuerPublicKey: s.issuer.PublicKeyHex(),
		Predicates:      []predicate.Predicate{olderThan40()},
	}
	tampered := &models.PredicateRequest{
		Credential:      s.person(19850101) + "x",
		IssuerPublicKey: s.issuer.PublicKeyHex(),
	}

	reqs := []*models.PredicateRequest{good, failing, good, tampered, nil, good}
	for _, concurrency := range []int{1, 2, 8} {
		s.Run(fmt.Sprintf("concurrency %d", concurrency), func() {
			svc := New(WithBatchConcurrency(concurrency), WithMetrics(metrics.New(prometheus.NewRegistry())))
			items := svc.ProveBatch(context.Background(), reqs)
			s.Require().Len(items, len(reqs))

			for i, item := range items {
				s.Equal(i, item.Index)
			}
			for _, i := range []int{0, 2, 5} {
				s.Require().NoError(items[i].Err)
				s.Equal([]string{"older than 40"}, items[i].Attestation.Results())
			}
			s.True(dErrors.HasCode(items[1].Err, dErrors.CodePredicateNotSatisfied))
			s.Nil(items[1].Attestation)
			s.Error(items[3].Err)
			s.True(dErrors.HasCode(items[4].Err, dErrors.CodeBadRequest))

			runIDs := map[string]bool{}
			for _, i := range []int{0, 2, 5} {
				runIDs[items[i].Attestation.RunID] = true
			}
			s.Len(runIDs, 3, "each run gets its own ID")
		})
	}

	s.Run("empty batch", func() {
		s.Empty(s.service.ProveBatch(context.Background(), nil))
	})

	s.Run("batch span", func() {
		s.service.ProveBatch(context.Background(), []*models.PredicateRequest{good, failing})
		spans := s.tracer.named(tracer.SpanBatch)
		s.Require().NotEmpty(spans)
		last := spans[len(spans)-1]
		s.Equal(int64(2), last.attrs[tracer.AttrBatchSize])
		s.Equal(int64(1), last.attrs[tracer.AttrBatchFailures])
		s.True(last.ended)
	})
}

func (s *ServiceSuite) TestSelfCheck() {
	s.Require().NoError(s.service.SelfCheck(context.Background()))
	s.Require().NoError(New(WithMatchField("face_hash")).SelfCheck(context.Background()))
	s.Empty(s.tracer.spans, "self check does not trace")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Error(s.service.SelfCheck(ctx))
}
