// Package metrics exports equality saturation runs as Prometheus metrics.
//
// A Recorder is passed to egraph.NewRunner through egraph.WithRecorder:
//
//	rec := metrics.NewRecorder(prometheus.DefaultRegisterer)
//	rep, err := egraph.NewRunner(g, egraph.WithRecorder(rec)).Run(rules)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marlang/marlang/internal/egraph"
)

const namespace = "marlang"

// Recorder implements egraph.Recorder.
//
// Thread Safety: safe for concurrent use; Prometheus collectors are.
type Recorder struct {
	iterations   prometheus.Counter
	applications *prometheus.CounterVec
	rebuilds     prometheus.Counter
	nodes        prometheus.Gauge
	classes      prometheus.Gauge
	runs         *prometheus.CounterVec
	duration     prometheus.Histogram
}

var _ egraph.Recorder = (*Recorder)(nil)

// NewRecorder registers the saturation collectors with reg. Registering two
// recorders with the same registry panics, as promauto does.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saturation_iterations_total",
			Help:      "Rounds of rule application completed",
		}),
		applications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_unions_total",
			Help:      "Unions caused by each rewrite rule",
		}, []string{"rule"}),
		rebuilds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_unions_total",
			Help:      "Congruence and constant unions found while rebuilding",
		}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "egraph_nodes",
			Help:      "Distinct canonical nodes after the last round",
		}),
		classes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "egraph_classes",
			Help:      "Equivalence classes after the last round",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saturation_runs_total",
			Help:      "Saturation runs by stop reason",
		}, []string{"reason"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "saturation_run_duration_seconds",
			Help:      "Wall time of saturation runs",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObserveIteration records one round.
func (r *Recorder) ObserveIteration(it egraph.Iteration) {
	r.iterations.Inc()
	for rule, n := range it.Applied {
		r.applications.WithLabelValues(rule).Add(float64(n))
	}
	r.rebuilds.Add(float64(it.RebuildUnions))
	r.nodes.Set(float64(it.Nodes))
	r.classes.Set(float64(it.Classes))
}

// ObserveStop records the end of a run.
func (r *Recorder) ObserveStop(reason egraph.StopReason, elapsed time.Duration) {
	r.runs.WithLabelValues(string(reason)).Inc()
	r.duration.Observe(elapsed.Seconds())
}
