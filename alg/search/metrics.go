package search

import "github.com/prometheus/client_golang/prometheus"

const metricsSubsystem = "beam"

// Metrics counts the work of a Beam. A nil *Metrics records nothing.
type Metrics struct {
	sequences  prometheus.Counter
	positions  prometheus.Counter
	candidates prometheus.Counter
	pruned     prometheus.Counter
	occupancy  prometheus.Histogram
}

var _ prometheus.Collector = &Metrics{}

func NewMetrics() *Metrics {
	return &Metrics{
		sequences: prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "sequences_total",
			Help:      "counter tracking decoded sequences",
		}),
		positions: prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "positions_total",
			Help:      "counter tracking decoded positions",
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "candidates_total",
			Help:      "counter tracking hypotheses generated before pruning",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "pruned_total",
			Help:      "counter tracking hypotheses dropped by pruning",
		}),
		occupancy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: metricsSubsystem,
			Name:      "occupancy",
			Help:      "histogram of retained hypotheses per position",
			Buckets:   prometheus.LinearBuckets(1, 4, 8),
		}),
	}
}

func (m *Metrics) Describe(descs chan<- *prometheus.Desc) {
	if m == nil {
		return
	}
	m.sequences.Describe(descs)
	m.positions.Describe(descs)
	m.candidates.Describe(descs)
	m.pruned.Describe(descs)
	m.occupancy.Describe(descs)
}

func (m *Metrics) Collect(metrics chan<- prometheus.Metric) {
	if m == nil {
		return
	}
	m.sequences.Collect(metrics)
	m.positions.Collect(metrics)
	m.candidates.Collect(metrics)
	m.pruned.Collect(metrics)
	m.occupancy.Collect(metrics)
}

func (m *Metrics) observePosition(generated, retained int) {
	if m == nil {
		return
	}
	m.positions.Inc()
	m.candidates.Add(float64(generated))
	m.pruned.Add(float64(generated - retained))
	m.occupancy.Observe(float64(retained))
}

func (m *Metrics) observeSequence() {
	if m == nil {
		return
	}
	m.sequences.Inc()
}
