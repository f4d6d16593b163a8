package headshot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure by what the caller should do about it.
type ErrorKind string

const (
	// KindMissingConfig indicates a provider key or endpoint is not configured.
	// It is raised before any network call.
	KindMissingConfig ErrorKind = "missing_config"

	// KindValidation indicates the caller sent a request it must correct.
	KindValidation ErrorKind = "validation"

	// KindTooLarge indicates a reference image exceeds the size limit.
	KindTooLarge ErrorKind = "too_large"

	// KindAuth indicates the caller is not signed in.
	KindAuth ErrorKind = "auth"

	// KindInsufficientCredits indicates the account has no credits left.
	KindInsufficientCredits ErrorKind = "insufficient_credits"

	// KindRateLimit indicates a provider rate limit or quota was hit.
	KindRateLimit ErrorKind = "rate_limit"

	// KindContentPolicy indicates the provider refused the prompt or images.
	KindContentPolicy ErrorKind = "content_policy"

	// KindInvalidRequest indicates the provider rejected the request shape.
	KindInvalidRequest ErrorKind = "invalid_request"

	// KindNetwork covers timeouts and connection failures.
	KindNetwork ErrorKind = "network"

	// KindServer indicates a provider side 5xx failure.
	KindServer ErrorKind = "server"

	// KindEmptyResult indicates the provider answered without an image.
	KindEmptyResult ErrorKind = "empty_result"

	// KindUnknown is the fallback for unrecognized failures.
	KindUnknown ErrorKind = "unknown"
)

// FriendlyError is the normalized view of a generation failure.
// Message and Suggestion are safe to show to end users. Retryable is
// advisory only; nothing in this module retries automatically.
type FriendlyError struct {
	Kind       ErrorKind
	Provider   Provider
	Message    string
	Suggestion string
	Retryable  bool
	Cause      error
}

// Error returns the error message.
func (e *FriendlyError) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = string(e.Provider) + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FriendlyError) Unwrap() error {
	return e.Cause
}

// AsFriendly returns the FriendlyError in err's chain. Errors that were never
// classified become a retryable KindUnknown error.
func AsFriendly(err error) *FriendlyError {
	if err == nil {
		return nil
	}
	var fe *FriendlyError
	if errors.As(err, &fe) {
		return fe
	}
	return &FriendlyError{
		Kind:       KindUnknown,
		Message:    "Something went wrong while generating your image.",
		Suggestion: "Please try again in a moment.",
		Retryable:  true,
		Cause:      err,
	}
}

// IsRetryable reports whether err is advisory-retryable.
func IsRetryable(err error) bool {
	var fe *FriendlyError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var fe *FriendlyError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// NewAuthError is returned when the caller is not authenticated.
func NewAuthError() *FriendlyError {
	return &FriendlyError{
		Kind:       KindAuth,
		Message:    "You need to be signed in to generate images.",
		Suggestion: "Please sign in and try again.",
	}
}

// NewInsufficientCreditsError is returned when the account cannot pay for a generation.
func NewInsufficientCreditsError() *FriendlyError {
	return &FriendlyError{
		Kind:       KindInsufficientCredits,
		Message:    "You don't have enough credits to generate an image.",
		Suggestion: "Purchase more credits to continue generating headshots.",
	}
}

// NewMissingConfigError reports an unconfigured provider setting.
func NewMissingConfigError(provider Provider, setting string) *FriendlyError {
	return &FriendlyError{
		Kind:       KindMissingConfig,
		Provider:   provider,
		Message:    "Image generation is not configured.",
		Suggestion: "Please contact support.",
		Cause:      fmt.Errorf("%s is not set", setting),
	}
}

// NewValidationError reports a request the caller must fix.
func NewValidationError(message string) *FriendlyError {
	return &FriendlyError{
		Kind:       KindValidation,
		Message:    message,
		Suggestion: "Please check your request and try again.",
	}
}

// NewTooLargeError reports an oversized reference image.
func NewTooLargeError(message string) *FriendlyError {
	return &FriendlyError{
		Kind:       KindTooLarge,
		Message:    message,
		Suggestion: "Please upload smaller images (under 1MB each).",
	}
}

// NewEmptyResultError reports a provider response without an image.
func NewEmptyResultError(provider Provider) *FriendlyError {
	return &FriendlyError{
		Kind:       KindEmptyResult,
		Provider:   provider,
		Message:    "No image was returned.",
		Suggestion: "Please try again. If the problem persists, try rephrasing your prompt.",
		Retryable:  true,
	}
}

// Rule maps raw provider error text to a FriendlyError.
// A rule matches when any of its Match substrings occurs in the raw text,
// compared case-insensitively.
type Rule struct {
	Match      []string
	Kind       ErrorKind
	Message    string
	Suggestion string
	Retryable  bool
}

func (r Rule) matches(lowered string) bool {
	for _, m := range r.Match {
		if strings.Contains(lowered, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Classify maps raw error text to a FriendlyError using rules in order.
// The first matching rule wins; with no match the result is a retryable
// KindUnknown error. cause is attached unchanged.
func Classify(provider Provider, raw string, rules []Rule, cause error) *FriendlyError {
	lowered := strings.ToLower(raw)
	for _, r := range rules {
		if r.matches(lowered) {
			return &FriendlyError{
				Kind:       r.Kind,
				Provider:   provider,
				Message:    r.Message,
				Suggestion: r.Suggestion,
				Retryable:  r.Retryable,
				Cause:      cause,
			}
		}
	}
	return &FriendlyError{
		Kind:       KindUnknown,
		Provider:   provider,
		Message:    "Image generation failed.",
		Suggestion: "Please try again in a moment.",
		Retryable:  true,
		Cause:      cause,
	}
}

// ImageError represents an error while decoding or fetching an image.
type ImageError struct {
	Op  string // "decode" or "fetch"
	URL string // the image URL or "base64"
	Err error  // underlying error
}

// Error returns a formatted error message describing the image processing failure.
func (e *ImageError) Error() string {
	return fmt.Sprintf("image %s error for %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ImageError) Unwrap() error {
	return e.Err
}
