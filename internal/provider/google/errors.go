package google

import (
	"errors"
	"fmt"

	"github.com/spetersoncode/headshot"
	"google.golang.org/genai"
)

// errorRules is checked in order; the first match wins.
var errorRules = []headshot.Rule{
	{
		Match:      []string{"resource_exhausted", "quota", "rate limit", "rate_limit", "too many requests"},
		Kind:       headshot.KindRateLimit,
		Message:    "The image service has reached its usage limit for now.",
		Suggestion: "Please wait a minute and try again.",
		Retryable:  true,
	},
	{
		Match:      []string{"content policy", "content blocked", "safety", "blocked", "prohibited_content", "blocklist"},
		Kind:       headshot.KindContentPolicy,
		Message:    "Your request was blocked by the content policy.",
		Suggestion: "Please rephrase your prompt or use different reference photos.",
	},
	{
		Match:      []string{"api key not valid", "api_key_invalid", "permission_denied", "unauthenticated"},
		Kind:       headshot.KindMissingConfig,
		Message:    "Image generation is not configured correctly.",
		Suggestion: "Please contact support.",
	},
	{
		Match:      []string{"invalid_argument", "invalid argument", "failed_precondition", "bad request", "unsupported mime"},
		Kind:       headshot.KindInvalidRequest,
		Message:    "The image request was not accepted.",
		Suggestion: "Please check your reference photos (JPEG or PNG) and try again.",
	},
	{
		Match:      []string{"internal", "unavailable", "overloaded", "bad gateway", "server error"},
		Kind:       headshot.KindServer,
		Message:    "The image service is having trouble right now.",
		Suggestion: "Please try again in a few moments.",
		Retryable:  true,
	},
	{
		Match:      []string{"deadline_exceeded", "deadline exceeded", "timeout", "timed out", "connection refused", "connection reset", "no such host", "eof", "network"},
		Kind:       headshot.KindNetwork,
		Message:    "We couldn't reach the image service.",
		Suggestion: "Please check your connection and try again.",
		Retryable:  true,
	},
}

// wrapError classifies a Google GenAI error into a FriendlyError.
// genai.APIError carries the gRPC-style status name, which is what most
// rules key on.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	raw := err.Error()
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		raw = fmt.Sprintf("%d %s %s", apiErr.Code, apiErr.Status, apiErr.Message)
	}
	return headshot.Classify(headshot.ProviderGemini, raw, errorRules, err)
}
