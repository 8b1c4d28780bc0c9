package observability

import (
	"context"

	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run and step collectors.
type Metrics struct {
	steps    *prometheus.CounterVec
	runs     *prometheus.CounterVec
	runSteps *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pushdown_steps_total",
				Help: "Transitions taken, by automaton and kind (symbol or lambda).",
			},
			[]string{"automaton", "kind"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pushdown_runs_total",
				Help: "Finished runs, by automaton and result (accepted, rejected, error).",
			},
			[]string{"automaton", "result"},
		),
		runSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pushdown_run_steps",
				Help:    "Transitions per finished run.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"automaton"},
		),
	}
	for _, c := range []prometheus.Collector{m.steps, m.runs, m.runSteps} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors for automaton name.
func (m *Metrics) Hooks(name string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			kind := "symbol"
			if e.Lambda {
				kind = "lambda"
			}
			m.steps.WithLabelValues(name, kind).Inc()
		},
		OnAccept: func(ctx context.Context, e *domain.RunEvent) {
			m.finish(name, "accepted", e.Steps)
		},
		OnReject: func(ctx context.Context, e *domain.RunEvent) {
			m.finish(name, ResultOf(e.Err), e.Steps)
		},
	}
}

func (m *Metrics) finish(name, result string, steps int) {
	m.runs.WithLabelValues(name, result).Inc()
	m.runSteps.WithLabelValues(name).Observe(float64(steps))
}
