package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "vault"

// Indicators is what the orchestrator and the snapshot cache report to.
type Indicators interface {
	IncrementInFlight(kind string)
	DecrementInFlight(kind string)
	IncrementProcessed(kind, status string)
	ObserveConfirmationLatency(kind string, latency time.Duration)
	IncrementReadErrors(field string)
}

type PromIndicators struct {
	inFlight            *prometheus.GaugeVec
	processedTotal      *prometheus.CounterVec
	confirmationLatency *prometheus.SummaryVec
	readErrorsTotal     *prometheus.CounterVec
}

var _ Indicators = (*PromIndicators)(nil)

func NewPromIndicators(reg prometheus.Registerer) *PromIndicators {
	return &PromIndicators{
		inFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "tx",
				Name:      "in_flight",
				Help:      "number of transactions currently submitting or awaiting confirmation",
			},
			[]string{"kind"},
		),
		processedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "tx",
				Name:      "processed_total",
				Help:      "number of transactions that reached a final state, by kind and status (confirmed, failed, rejected)",
			},
			[]string{"kind", "status"},
		),
		confirmationLatency: promauto.With(reg).NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  Namespace,
				Subsystem:  "tx",
				Name:       "confirmation_seconds",
				Help:       "time between submission and receipt in seconds",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"kind"},
		),
		readErrorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "read",
				Name:      "errors_total",
				Help:      "number of failed contract reads by snapshot field",
			},
			[]string{"field"},
		),
	}
}

func (p *PromIndicators) IncrementInFlight(kind string) {
	p.inFlight.WithLabelValues(kind).Inc()
}

func (p *PromIndicators) DecrementInFlight(kind string) {
	p.inFlight.WithLabelValues(kind).Dec()
}

func (p *PromIndicators) IncrementProcessed(kind, status string) {
	p.processedTotal.WithLabelValues(kind, status).Inc()
}

func (p *PromIndicators) ObserveConfirmationLatency(kind string, latency time.Duration) {
	p.confirmationLatency.WithLabelValues(kind).Observe(latency.Seconds())
}

func (p *PromIndicators) IncrementReadErrors(field string) {
	p.readErrorsTotal.WithLabelValues(field).Inc()
}

// NoopIndicators discards everything.
type NoopIndicators struct{}

var _ Indicators = NoopIndicators{}

func (NoopIndicators) IncrementInFlight(string)                         {}
func (NoopIndicators) DecrementInFlight(string)                         {}
func (NoopIndicators) IncrementProcessed(string, string)                {}
func (NoopIndicators) ObserveConfirmationLatency(string, time.Duration) {}
func (NoopIndicators) IncrementReadErrors(string)                       {}
