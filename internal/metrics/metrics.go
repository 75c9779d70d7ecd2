// Package metrics counts evaluations and samples drawn through any problem.Problem.
package metrics

import (
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"flexJobShop/internal/problem"
)

const namespace = "fjsp"

type Metrics struct {
	evaluations *prometheus.CounterVec
	samples     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of evaluated solutions by outcome.",
		}, []string{"family", "outcome"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Number of random solutions drawn.",
		}, []string{"family"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating one solution.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"family"}),
	}
	for _, c := range []prometheus.Collector{m.evaluations, m.samples, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type instrumented[S any] struct {
	inner    problem.Problem[S]
	feasible prometheus.Counter
	rejected prometheus.Counter
	samples  prometheus.Counter
	duration prometheus.Observer
}

// Instrument wraps p so every call is counted under family. A nil m returns p unchanged.
func Instrument[S any](m *Metrics, family string, p problem.Problem[S]) problem.Problem[S] {
	if m == nil {
		return p
	}
	return &instrumented[S]{
		inner:    p,
		feasible: m.evaluations.WithLabelValues(family, "feasible"),
		rejected: m.evaluations.WithLabelValues(family, "rejected"),
		samples:  m.samples.WithLabelValues(family),
		duration: m.duration.WithLabelValues(family),
	}
}

func (p *instrumented[S]) Evaluate(solution S) float64 {
	start := time.Now()
	v := p.inner.Evaluate(solution)
	p.duration.Observe(time.Since(start).Seconds())
	if problem.Feasible(v) {
		p.feasible.Inc()
	} else {
		p.rejected.Inc()
	}
	return v
}

func (p *instrumented[S]) RandomSolution(rng *rand.Rand) S {
	p.samples.Inc()
	return p.inner.RandomSolution(rng)
}
