package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "callqa"

// Metrics exports events as Prometheus series on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	tokens       *prometheus.CounterVec
	qualityScore prometheus.Histogram
	passRate     prometheus.Histogram
	sentiment    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "ai_requests_total",
				Help:      "Generation backend requests by operation, status and error kind",
			},
			[]string{"operation", "status", "error_kind"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "ai_request_duration_seconds",
				Help:      "Generation backend request latency",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
			},
			[]string{"operation", "model"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "ai_token_estimate_total",
				Help:      "Estimated tokens sent and received",
			},
			[]string{"operation", "direction"},
		),
		qualityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analysis_quality_score",
			Help:      "Quality score of successful analyses",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		passRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analysis_compliance_pass_rate",
			Help:      "Share of compliance items graded PASS",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		sentiment: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "analysis_sentiment_total",
				Help:      "Successful analyses by customer sentiment",
			},
			[]string{"sentiment"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.tokens,
		m.qualityScore,
		m.passRate,
		m.sentiment,
	)
	return m
}

func (m *Metrics) Name() string { return "prometheus" }

func (m *Metrics) Export(_ context.Context, event Event) error {
	op := string(event.Operation)
	m.requests.WithLabelValues(op, string(event.Status), event.ErrorKind).Inc()
	m.latency.WithLabelValues(op, event.Model).Observe(float64(event.DurationMs) / 1000)
	m.tokens.WithLabelValues(op, "in").Add(float64(event.TokenEstimateIn))
	m.tokens.WithLabelValues(op, "out").Add(float64(event.TokenEstimateOut))

	if event.QualityScore != nil {
		m.qualityScore.Observe(float64(*event.QualityScore))
	}
	if event.CompliancePassRate != nil {
		m.passRate.Observe(*event.CompliancePassRate)
	}
	if event.Sentiment != "" {
		m.sentiment.WithLabelValues(event.Sentiment).Inc()
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
