// Package service runs verification flows on behalf of the transport layer.
//
// Each run is an independent engine invocation: the service only adds a run
// ID, a span, metrics and logs around it and turns the result into a
// journal. Claim values never reach logs, spans or metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vcproof/internal/attestation"
	"vcproof/internal/credential/didkey"
	"vcproof/internal/credential/engine"
	"vcproof/internal/credential/predicate"
	"vcproof/internal/proof/metrics"
	"vcproof/internal/proof/models"
	"vcproof/internal/proof/tracer"
	dErrors "vcproof/pkg/domain-errors"
)

const defaultBatchConcurrency = 4

type Option func(*Service)

// Service runs predicate and subject-match flows.
type Service struct {
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           tracer.Tracer
	defaultIssuerKey string
	matchField       string
	batchConcurrency int
	newRunID         func() string
}

func New(opts ...Option) *Service {
	svc := &Service{
		logger:           slog.Default(),
		tracer:           tracer.NewNoop(),
		matchField:       engine.DefaultMatchField,
		batchConcurrency: defaultBatchConcurrency,
		newRunID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithDefaultIssuerKey sets the issuer key used when a request carries none.
// Hex and did:key forms are accepted.
func WithDefaultIssuerKey(key string) Option {
	return func(s *Service) {
		s.defaultIssuerKey = key
	}
}

// WithMatchField sets the credentialSubject member compared by subject-match
// runs that do not name one. Empty keeps the default.
func WithMatchField(field string) Option {
	return func(s *Service) {
		if field != "" {
			s.matchField = field
		}
	}
}

// WithBatchConcurrency bounds how many runs of one batch execute at once.
// Values below one keep the default.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithRunIDGenerator replaces the UUID run ID source.
func WithRunIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newRunID = gen
		}
	}
}

// ProvePredicates verifies the credential and evaluates every predicate. The
// attestation is only produced when all predicates hold.
func (s *Service) ProvePredicates(ctx context.Context, req *models.PredicateRequest) (*models.Attestation, error) {
	runID := s.newRunID()
	count := 0
	if req != nil {
		count = len(req.Predicates)
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanPredicates,
		tracer.String(tracer.AttrRunID, runID),
		tracer.String(tracer.AttrFlow, string(models.FlowPredicates)),
		tracer.Int64(tracer.AttrPredicateCount, int64(count)),
	)
	start := time.Now()

	att, err := s.provePredicates(ctx, runID, req)
	if s.metrics != nil {
		s.metrics.AddPredicates(count)
	}
	s.finish(ctx, span, models.FlowPredicates, runID, start, err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Int64(tracer.AttrResultCount, int64(len(att.Results()))))
	s.logger.InfoContext(ctx, "predicate proof produced",
		"run_id", runID,
		"predicate_count", count,
		"result_count", len(att.Results()),
	)
	return att, nil
}

func (s *Service) provePredicates(ctx context.Context, runID string, req *models.PredicateRequest) (*models.Attestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "run cancelled before start")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key, err := s.resolveKey(req.IssuerPublicKey)
	if err != nil {
		return nil, err
	}

	results, err := engine.RunPredicateFlow(req.Credential, key, req.Predicates)
	if err != nil {
		return nil, err
	}
	journal, err := attestation.NewPredicateJournal(results)
	if err != nil {
		return nil, err
	}
	return &models.Attestation{RunID: runID, Flow: models.FlowPredicates, Journal: journal}, nil
}

// ProveSubjectMatch verifies both credentials and checks they share a
// subject and the configured claim.
func (s *Service) ProveSubjectMatch(ctx context.Context, req *models.MatchRequest) (*models.Attestation, error) {
	runID := s.newRunID()
	field := s.matchField
	if req != nil && req.Field != "" {
		field = req.Field
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubjectMatch,
		tracer.String(tracer.AttrRunID, runID),
		tracer.String(tracer.AttrFlow, string(models.FlowSubjectMatch)),
		tracer.String(tracer.AttrMatchField, field),
	)
	start := time.Now()

	att, err := s.proveSubjectMatch(ctx, runID, req, field)
	s.finish(ctx, span, models.FlowSubjectMatch, runID, start, err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrSubjectHash, tracer.HashSubject(att.Subject())))
	s.logger.InfoContext(ctx, "subject match proof produced",
		"run_id", runID,
		"field", field,
	)
	return att, nil
}

func (s *Service) proveSubjectMatch(ctx context.Context, runID string, req *models.MatchRequest, field string) (*models.Attestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "run cancelled before start")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	keyA, err := s.resolveKey(req.IssuerPublicKey)
	if err != nil {
		return nil, err
	}
	keyB := keyA
	if req.ChallengeIssuerPublicKey != "" {
		if keyB, err = s.resolveKey(req.ChallengeIssuerPublicKey); err != nil {
			return nil, err
		}
	}

	subject, err := engine.RunMatchFlowWithKeys(req.OnboardingCredential, keyA, req.ChallengeCredential, keyB, field)
	if err != nil {
		return nil, err
	}
	journal, err := attestation.NewMatchJournal(subject)
	if err != nil {
		return nil, err
	}
	return &models.Attestation{RunID: runID, Flow: models.FlowSubjectMatch, Journal: journal}, nil
}

// ProveBatch runs every request as an independent predicate run, at most
// batchConcurrency at a time. Items come back in request order and a failing
// item never affects the others.
func (s *Service) ProveBatch(ctx context.Context, reqs []*models.PredicateRequest) []models.BatchItem {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBatch, tracer.Int64(tracer.AttrBatchSize, int64(len(reqs))))
	if s.metrics != nil {
		s.metrics.ObserveBatchSize(len(reqs))
	}

	items := make([]models.BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			att, err := s.ProvePredicates(gctx, req)
			items[i] = models.BatchItem{Index: i, Attestation: att, Err: err}
			// item failures are reported per item, never through the group
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for _, item := range items {
		if item.Err != nil {
			failures++
		}
	}
	span.SetAttributes(tracer.Int64(tracer.AttrBatchFailures, int64(failures)))
	span.End(nil)
	s.logger.InfoContext(ctx, "batch proof finished",
		"batch_size", len(reqs),
		"failures", failures,
	)
	return items
}

// resolveKey applies the default issuer key and normalizes did:key input.
func (s *Service) resolveKey(key string) (string, error) {
	if key == "" {
		key = s.defaultIssuerKey
	}
	if key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "issuer_public_key is required")
	}
	return didkey.ToHex(key)
}

// finish records the outcome of a run on its span, metrics and logs.
func (s *Service) finish(ctx context.Context, span tracer.Span, flow models.Flow, runID string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	elapsed := time.Since(start)
	span.SetAttributes(
		tracer.String(tracer.AttrOutcome, outcome),
		tracer.Duration(tracer.AttrDuration, elapsed),
	)

	var notSatisfied *predicate.NotSatisfiedError
	if errors.As(err, &notSatisfied) {
		span.SetAttributes(tracer.Int64(tracer.AttrFailedIndex, int64(notSatisfied.Index)))
	}
	if err == nil {
		span.AddEvent(tracer.EventJournalCommitted)
	}
	span.End(err)

	if s.metrics != nil {
		s.metrics.ObserveRun(string(flow), outcome, elapsed.Seconds())
	}
	if err == nil {
		return
	}

	attrs := []any{"run_id", runID, "flow", string(flow), "code", outcome}
	if notSatisfied != nil {
		attrs = append(attrs, "predicate_index", notSatisfied.Index, "predicate_field", notSatisfied.Field)
	}
	if outcome == string(dErrors.CodeInternal) {
		s.logger.ErrorContext(ctx, "verification run failed", append(attrs, "error", err)...)
		return
	}
	s.logger.WarnContext(ctx, "verification run failed", attrs...)
}
