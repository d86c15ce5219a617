package metrics

import (
	// Go Internal Packages
	"time"

	// External Packages
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives pipeline outcomes. Implementations must be safe for concurrent use.
type Recorder interface {
	ScoringAttempt(success bool, duration time.Duration)
	ScoringFallback()
	Batch(size int, potentialFraud, predictedFraud int)
	DeadLettered(reason string, count int)
	SinkFailure()
}

type NoOp struct{}

func (NoOp) ScoringAttempt(bool, time.Duration) {}
func (NoOp) ScoringFallback() {}
func (NoOp) Batch(int, int, int) {}
func (NoOp) DeadLettered(string, int) {}
func (NoOp) SinkFailure() {}

type Prometheus struct {
	attempts       *prometheus.CounterVec
	attemptLatency prometheus.Histogram
	fallbacks      prometheus.Counter
	batches        prometheus.Counter
	records        prometheus.Counter
	flagged        *prometheus.CounterVec
	deadLettered   *prometheus.CounterVec
	sinkFailures   prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(namespace string, reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_attempts_total",
			Help:      "Scoring endpoint attempts by result",
		}, []string{"result"}),
		attemptLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_attempt_duration_seconds",
			Help:      "Latency of a single scoring attempt",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_fallbacks_total",
			Help:      "Batches scored with the zero fallback",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches emitted to the sink",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records emitted to the sink",
		}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_records_total",
			Help:      "Records flagged by source",
		}, []string{"source"}),
		deadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_lettered_records_total",
			Help:      "Records sent to the dead letter queue by reason",
		}, []string{"reason"}),
		sinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_write_failures_total",
			Help:      "Failed batch writes",
		}),
	}

	reg.MustRegister(p.attempts, p.attemptLatency, p.fallbacks, p.batches,
		p.records, p.flagged, p.deadLettered, p.sinkFailures)
	return p
}

func (p *Prometheus) ScoringAttempt(success bool, duration time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	p.attempts.WithLabelValues(result).Inc()
	p.attemptLatency.Observe(duration.Seconds())
}

func (p *Prometheus) ScoringFallback() {
	p.fallbacks.Inc()
}

func (p *Prometheus) Batch(size int, potentialFraud, predictedFraud int) {
	p.batches.Inc()
	p.records.Add(float64(size))
	p.flagged.WithLabelValues("rule").Add(float64(potentialFraud))
	p.flagged.WithLabelValues("model").Add(float64(predictedFraud))
}

func (p *Prometheus) DeadLettered(reason string, count int) {
	p.deadLettered.WithLabelValues(reason).Add(float64(count))
}

func (p *Prometheus) SinkFailure() {
	p.sinkFailures.Inc()
}
