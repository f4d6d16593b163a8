package openai

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/spetersoncode/headshot"
)

// errorRules is checked in order; the first match wins.
var errorRules = []headshot.Rule{
	{
		Match:      []string{"rate limit", "rate_limit", "too many requests", "quota", "billing_hard_limit"},
		Kind:       headshot.KindRateLimit,
		Message:    "The image service is receiving too many requests right now.",
		Suggestion: "Please wait a minute and try again.",
		Retryable:  true,
	},
	{
		Match:      []string{"content policy", "content_policy", "safety system", "safety", "moderation"},
		Kind:       headshot.KindContentPolicy,
		Message:    "Your prompt was rejected by the content policy.",
		Suggestion: "Please rephrase your prompt and avoid sensitive or restricted content.",
	},
	{
		Match:      []string{"incorrect api key", "invalid_api_key", "unauthorized", "authentication"},
		Kind:       headshot.KindMissingConfig,
		Message:    "Image generation is not configured correctly.",
		Suggestion: "Please contact support.",
	},
	{
		Match:      []string{"invalid_request_error", "invalid", "bad request", "must be one of", "unsupported"},
		Kind:       headshot.KindInvalidRequest,
		Message:    "The image request was not accepted.",
		Suggestion: "Please adjust your prompt or settings and try again.",
	},
	{
		Match:      []string{"internal server error", "server_error", "bad gateway", "service unavailable", "gateway timeout", "overloaded"},
		Kind:       headshot.KindServer,
		Message:    "The image service is having trouble right now.",
		Suggestion: "Please try again in a few moments.",
		Retryable:  true,
	},
	{
		Match:      []string{"timeout", "timed out", "deadline exceeded", "connection refused", "connection reset", "no such host", "eof", "network"},
		Kind:       headshot.KindNetwork,
		Message:    "We couldn't reach the image service.",
		Suggestion: "Please check your connection and try again.",
		Retryable:  true,
	},
}

// wrapError classifies an OpenAI SDK error into a FriendlyError.
// The raw text includes the status line and response body when the SDK
// returned an API error.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	raw := err.Error()
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		raw = http.StatusText(apiErr.StatusCode) + " " + raw
	}
	return headshot.Classify(headshot.ProviderOpenAI, raw, errorRules, err)
}

func errReferenceImagesUnsupported() *headshot.FriendlyError {
	return &headshot.FriendlyError{
		Kind:       headshot.KindInvalidRequest,
		Provider:   headshot.ProviderOpenAI,
		Message:    "This image model does not support reference images.",
		Suggestion: "Remove your reference photos or choose a different model.",
	}
}
