package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun("predicates", OutcomeOK, 0.002)
	m.ObserveRun("predicates", "signature_invalid", 0.001)
	m.ObserveRun("predicates", OutcomeOK, 0.003)
	m.AddPredicates(3)
	m.AddPredicates(2)
	m.ObserveBatchSize(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs.WithLabelValues("predicates", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("predicates", "signature_invalid")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.PredicatesEvaluated))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchSize))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
