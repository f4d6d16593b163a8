package metrics

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spetersoncode/headshot"
	"github.com/spetersoncode/headshot/client"
	"github.com/stretchr/testify/assert"
)

func newTestCollector() *Collector {
	return NewCollector("test", prometheus.NewRegistry())
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	c := newTestCollector()

	c.RecordHTTPRequest("/api/generate-image", 200, 100*time.Millisecond)
	c.RecordHTTPRequest("/api/generate-image", 200, 50*time.Millisecond)
	c.RecordHTTPRequest("/api/generate-image", 402, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("/api/generate-image", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("/api/generate-image", "402")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.httpRequestDuration))
}

func TestCollector_RecordEvent(t *testing.T) {
	c := newTestCollector()

	c.RecordEvent(client.Event{Type: client.EventRequestStart, Operation: "image", Provider: headshot.ProviderOpenAI})
	c.RecordEvent(client.Event{Type: client.EventRequestComplete, Operation: "image", Provider: headshot.ProviderOpenAI, Duration: time.Second})
	c.RecordEvent(client.Event{
		Type:      client.EventRequestError,
		Operation: "image",
		Provider:  headshot.ProviderGemini,
		Duration:  time.Second,
		Error:     &headshot.FriendlyError{Kind: headshot.KindRateLimit},
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(c.generationsTotal.WithLabelValues("image", "openai", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.generationsTotal.WithLabelValues("image", "gemini", "rate_limit")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.generationsTotal))
}

func TestCollector_Consume(t *testing.T) {
	c := newTestCollector()
	events := make(chan client.Event, 2)
	events <- client.Event{Type: client.EventRequestComplete, Operation: "photomaker", Provider: headshot.ProviderRunware}
	events <- client.Event{Type: client.EventRequestError, Operation: "photomaker", Provider: headshot.ProviderRunware, Error: errors.New("boom")}
	close(events)

	c.Consume(events, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.generationsTotal.WithLabelValues("photomaker", "runware", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.generationsTotal.WithLabelValues("photomaker", "runware", "unknown")))
}

func TestCollector_Credits(t *testing.T) {
	c := newTestCollector()

	c.RecordCreditDeduction(nil)
	c.RecordCreditDeduction(errors.New("redis down"))
	c.RecordStorageFailure()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.creditDeductions.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.creditDeductions.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.storageFailures))
}
