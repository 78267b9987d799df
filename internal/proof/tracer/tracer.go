// Package tracer provides a small tracing abstraction for proof runs.
//
// The service depends on the Tracer interface only, so tests run with the
// no-op implementation and the server wires the OpenTelemetry adapter.
// Span attributes never carry claim values or credentials; subjects are
// hashed with HashSubject before they are attached.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanPredicates,
	//       tracer.String(tracer.AttrRunID, runID),
	//       tracer.Int64(tracer.AttrPredicateCount, 3),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute. Exporters record it in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// HashSubject returns a short SHA-256 prefix of a credential subject so
// traces of the same holder correlate without exposing the identifier.
func HashSubject(subject string) string {
	if subject == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanPredicates   = "proof.predicates"
	SpanSubjectMatch = "proof.subject_match"
	SpanBatch        = "proof.batch"
)

// Attribute keys.
const (
	AttrRunID          = "run.id"
	AttrDuration       = "run.duration_ms"
	AttrFlow           = "run.flow"
	AttrOutcome        = "run.outcome"
	AttrPredicateCount = "predicates.count"
	AttrFailedIndex    = "predicates.failed_index"
	AttrResultCount    = "results.count"
	AttrSubjectHash    = "subject.hash"
	AttrMatchField     = "match.field"
	AttrBatchSize      = "batch.size"
	AttrBatchFailures  = "batch.failures"
)

// Event names.
const (
	EventJournalCommitted = "journal.committed"
)
