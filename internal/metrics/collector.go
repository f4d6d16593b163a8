// Package metrics exposes Prometheus metrics for image generation.
package metrics

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spetersoncode/headshot"
	"github.com/spetersoncode/headshot/client"
)

// Collector records HTTP, generation and credit metrics.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec

	creditDeductions *prometheus.CounterVec
	storageFailures  prometheus.Counter
}

// NewCollector registers the collector's metrics with reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Total number of image generations by provider and outcome",
			},
			[]string{"operation", "provider", "outcome"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Provider generation latency in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"operation", "provider"},
		),
		creditDeductions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credit_deductions_total",
				Help:      "Post-generation credit deductions by result",
			},
			[]string{"result"},
		),
		storageFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_failures_total",
				Help:      "Generated images that could not be stored",
			},
		),
	}
}

// RecordHTTPRequest records one handled request.
func (c *Collector) RecordHTTPRequest(route string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordEvent records a client event. Start events are ignored.
func (c *Collector) RecordEvent(e client.Event) {
	switch e.Type {
	case client.EventRequestComplete:
		c.generationsTotal.WithLabelValues(e.Operation, string(e.Provider), "success").Inc()
		c.generationDuration.WithLabelValues(e.Operation, string(e.Provider)).Observe(e.Duration.Seconds())
	case client.EventRequestError:
		c.generationsTotal.WithLabelValues(e.Operation, string(e.Provider), string(headshot.KindOf(e.Error))).Inc()
		if e.Duration > 0 {
			c.generationDuration.WithLabelValues(e.Operation, string(e.Provider)).Observe(e.Duration.Seconds())
		}
	}
}

// Consume records events until the channel is closed.
func (c *Collector) Consume(events <-chan client.Event, logger *slog.Logger) {
	for e := range events {
		c.RecordEvent(e)
		if e.Type == client.EventRequestError {
			logger.Debug("generation failed", "operation", e.Operation, "provider", e.Provider, "reference_images", e.ReferenceImages, "error", e.Error)
		}
	}
}

// RecordCreditDeduction records the result of a post-generation deduction.
func (c *Collector) RecordCreditDeduction(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	c.creditDeductions.WithLabelValues(result).Inc()
}

// RecordStorageFailure records an image that could not be persisted.
func (c *Collector) RecordStorageFailure() {
	c.storageFailures.Inc()
}
