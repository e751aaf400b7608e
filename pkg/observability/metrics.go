package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure classes reported by ObserveFailure.
const (
	ClassUser         = "user"
	ClassCollaborator = "collaborator"
	ClassFatal        = "fatal"
)

// Metrics groups the engine's collectors.
type Metrics struct {
	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	exports  *prometheus.CounterVec
	uploads  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. sessions, when non-nil, is
// sampled on every scrape for the active session gauge.
func NewMetrics(reg prometheus.Registerer, sessions func() int) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datadesk_events_total",
				Help: "Total number of inbound events by type",
			},
			[]string{"type"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datadesk_event_failures_total",
				Help: "Events that ended in an error reply, by error class",
			},
			[]string{"class"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datadesk_dispatch_duration_seconds",
				Help:    "Duration of event dispatch including session commit",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datadesk_exports_total",
				Help: "Result files sent to users, by format",
			},
			[]string{"format"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datadesk_uploads_total",
				Help: "Dataset uploads by outcome",
			},
			[]string{"outcome"},
		),
	}

	collectors := []prometheus.Collector{m.events, m.failures, m.duration, m.exports, m.uploads}
	if sessions != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "datadesk_active_sessions",
				Help: "Sessions currently held by the store",
			},
			func() float64 { return float64(sessions()) },
		))
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveEvent records one dispatched event.
func (m *Metrics) ObserveEvent(eventType string, d time.Duration) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
	m.duration.WithLabelValues(eventType).Observe(d.Seconds())
}

// ObserveFailure records an error reply.
func (m *Metrics) ObserveFailure(class string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(class).Inc()
}

// ObserveExport records a delivered file.
func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// ObserveUpload records an upload outcome ("accepted" or "rejected").
func (m *Metrics) ObserveUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}
