package metrics

import (
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexJobShop/internal/problem"
)

// parityProblem rejects odd solutions.
type parityProblem struct{}

func (parityProblem) Evaluate(v int) float64 {
	if v%2 != 0 {
		return problem.Rejected
	}
	return float64(v)
}

func (parityProblem) RandomSolution(rng *rand.Rand) int {
	return rng.Intn(100)
}

func parity() problem.Problem[int] {
	return parityProblem{}
}

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	p := Instrument(m, "parity", parity())
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		p.RandomSolution(rng)
	}
	assert.Equal(t, 4.0, p.Evaluate(4))
	assert.Equal(t, problem.Rejected, p.Evaluate(3))
	assert.Equal(t, problem.Rejected, p.Evaluate(5))

	assert.Equal(t, 5.0, testutil.ToFloat64(m.samples.WithLabelValues("parity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("parity", "feasible")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evaluations.WithLabelValues("parity", "rejected")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestInstrument_NilMetrics(t *testing.T) {
	p := Instrument(nil, "parity", parity())
	_, wrapped := p.(*instrumented[int])
	assert.False(t, wrapped)
	assert.Equal(t, 2.0, p.Evaluate(2))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
