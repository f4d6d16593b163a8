package client

import (
	"time"

	"github.com/spetersoncode/headshot"
)

// EventType identifies the kind of event occurring during client operations.
type EventType string

const (
	// EventRequestStart fires before a provider request begins.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after a provider returned an image.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when a request fails, including failures to
	// initialize the provider.
	EventRequestError EventType = "request_error"
)

// Event represents an observable occurrence during client operations.
type Event struct {
	// Type identifies the kind of event.
	Type EventType

	// Operation is "image" or "photomaker".
	Operation string

	// Provider is the provider the request was routed to.
	Provider headshot.Provider

	// Model is the model that produced the image (complete events only).
	Model string

	// ReferenceImages is the number of reference photos sent.
	ReferenceImages int

	// Duration is the elapsed time for finished requests.
	Duration time.Duration

	// Error contains the classified error for EventRequestError.
	Error error

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// emit sends an event with timestamp to the channel without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
		// dropped
	}
}
