package runware

import (
	"context"
	"errors"

	"github.com/spetersoncode/headshot"
)

// errorRules is checked in order; the first match wins.
var errorRules = []headshot.Rule{
	{
		Match:      []string{"invalid api key", "invalidapikey", "api key", "authentication"},
		Kind:       headshot.KindMissingConfig,
		Message:    "Image generation is not configured correctly.",
		Suggestion: "Please contact support.",
	},
	{
		Match:      []string{"insufficient credits", "insufficientcredits", "balance"},
		Kind:       headshot.KindMissingConfig,
		Message:    "The image service account is out of credits.",
		Suggestion: "Please contact support.",
	},
	{
		Match:      []string{"rate limit", "too many requests"},
		Kind:       headshot.KindRateLimit,
		Message:    "The image service is busy right now.",
		Suggestion: "Please wait a minute and try again.",
		Retryable:  true,
	},
	{
		Match:      []string{"nsfw", "content policy", "inappropriate", "safety", "moderation"},
		Kind:       headshot.KindContentPolicy,
		Message:    "Your request was blocked by the content policy.",
		Suggestion: "Please rephrase your prompt or use different reference photos.",
	},
	{
		Match:      []string{"no face", "face not", "face detection"},
		Kind:       headshot.KindInvalidRequest,
		Message:    "We couldn't find a face in your reference photos.",
		Suggestion: "Please upload clear, front-facing photos of one person.",
	},
	{
		Match:      []string{"invalid", "unsupported", "missing", "must be", "out of range"},
		Kind:       headshot.KindInvalidRequest,
		Message:    "The image request was not accepted.",
		Suggestion: "Please check your reference photos and try again.",
	},
	{
		Match:      []string{"internal", "server error", "unavailable", "bad gateway"},
		Kind:       headshot.KindServer,
		Message:    "The image service is having trouble right now.",
		Suggestion: "Please try again in a few moments.",
		Retryable:  true,
	},
	{
		Match:      []string{"timeout", "timed out", "deadline exceeded", "connection", "eof", "websocket", "closed", "no such host"},
		Kind:       headshot.KindNetwork,
		Message:    "We couldn't reach the image service.",
		Suggestion: "Please check your connection and try again.",
		Retryable:  true,
	},
}

// wrapError classifies a Runware failure into a FriendlyError.
// FriendlyErrors pass through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var fe *headshot.FriendlyError
	if errors.As(err, &fe) {
		return fe
	}

	raw := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		raw = "timeout: " + raw
	}
	return headshot.Classify(headshot.ProviderRunware, raw, errorRules, err)
}
