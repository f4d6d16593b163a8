package headshot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = []Rule{
	{Match: []string{"rate limit", "429"}, Kind: KindRateLimit, Message: "busy", Suggestion: "wait", Retryable: true},
	{Match: []string{"content policy"}, Kind: KindContentPolicy, Message: "blocked", Suggestion: "rephrase"},
	{Match: []string{"invalid"}, Kind: KindInvalidRequest, Message: "bad", Suggestion: "fix"},
	{Match: []string{"timeout"}, Kind: KindNetwork, Message: "unreachable", Suggestion: "retry", Retryable: true},
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		kind      ErrorKind
		retryable bool
	}{
		{"matches case-insensitively", "RATE LIMIT exceeded", KindRateLimit, true},
		{"first rule wins", "429 invalid content policy", KindRateLimit, true},
		{"content policy is not retryable", "violates Content Policy", KindContentPolicy, false},
		{"invalid request", "Invalid size", KindInvalidRequest, false},
		{"timeout", "request timeout", KindNetwork, true},
		{"unmatched falls back to retryable unknown", "the moon is full", KindUnknown, true},
		{"empty text falls back", "", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Classify(ProviderOpenAI, tt.raw, testRules, nil)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.retryable, fe.Retryable)
			assert.Equal(t, ProviderOpenAI, fe.Provider)
			assert.NotEmpty(t, fe.Message)
			assert.NotEmpty(t, fe.Suggestion)
		})
	}

	t.Run("keeps cause", func(t *testing.T) {
		cause := errors.New("raw sdk error")
		fe := Classify(ProviderGemini, "timeout", testRules, cause)
		assert.ErrorIs(t, fe, cause)
	})
}

func TestFriendlyError(t *testing.T) {
	t.Run("Error includes provider and cause", func(t *testing.T) {
		fe := &FriendlyError{Provider: ProviderGemini, Message: "No image was returned.", Cause: errors.New("empty")}
		assert.Equal(t, "gemini: No image was returned.: empty", fe.Error())
	})

	t.Run("Error without provider or cause", func(t *testing.T) {
		fe := NewAuthError()
		assert.Equal(t, fe.Message, fe.Error())
	})

	t.Run("AsFriendly finds wrapped errors", func(t *testing.T) {
		inner := NewInsufficientCreditsError()
		wrapped := fmt.Errorf("route: %w", inner)

		assert.Same(t, inner, AsFriendly(wrapped))
		assert.Equal(t, KindInsufficientCredits, KindOf(wrapped))
		assert.False(t, IsRetryable(wrapped))
	})

	t.Run("AsFriendly classifies unknown errors as retryable", func(t *testing.T) {
		cause := errors.New("boom")
		fe := AsFriendly(cause)
		require.NotNil(t, fe)
		assert.Equal(t, KindUnknown, fe.Kind)
		assert.True(t, fe.Retryable)
		assert.ErrorIs(t, fe, cause)
	})

	t.Run("AsFriendly of nil is nil", func(t *testing.T) {
		assert.Nil(t, AsFriendly(nil))
		assert.False(t, IsRetryable(nil))
		assert.Equal(t, KindUnknown, KindOf(nil))
	})
}

func TestSharedErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       *FriendlyError
		kind      ErrorKind
		retryable bool
	}{
		{"auth", NewAuthError(), KindAuth, false},
		{"insufficient credits", NewInsufficientCreditsError(), KindInsufficientCredits, false},
		{"missing config", NewMissingConfigError(ProviderOpenAI, "OPENAI_API_KEY"), KindMissingConfig, false},
		{"validation", NewValidationError("A prompt is required."), KindValidation, false},
		{"too large", NewTooLargeError("too big"), KindTooLarge, false},
		{"empty result", NewEmptyResultError(ProviderGemini), KindEmptyResult, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.NotEmpty(t, tt.err.Message)
			assert.NotEmpty(t, tt.err.Suggestion)
		})
	}

	t.Run("missing config names the setting", func(t *testing.T) {
		err := NewMissingConfigError(ProviderGemini, "GEMINI_API_KEY")
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
		assert.NotContains(t, err.Message, "GEMINI_API_KEY")
	})
}

func TestImageError(t *testing.T) {
	t.Run("Error returns formatted message", func(t *testing.T) {
		tests := []struct {
			name     string
			op       string
			url      string
			err      error
			expected string
		}{
			{
				name:     "decode error",
				op:       "decode",
				url:      "base64",
				err:      errors.New("invalid encoding"),
				expected: "image decode error for base64: invalid encoding",
			},
			{
				name:     "fetch error",
				op:       "fetch",
				url:      "https://im.runware.ai/image.png",
				err:      errors.New("connection refused"),
				expected: "image fetch error for https://im.runware.ai/image.png: connection refused",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				imgErr := &ImageError{Op: tt.op, URL: tt.url, Err: tt.err}
				assert.Equal(t, tt.expected, imgErr.Error())
			})
		}
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		underlyingErr := errors.New("underlying error")
		imgErr := &ImageError{Op: "decode", URL: "base64", Err: underlyingErr}
		assert.True(t, errors.Is(imgErr, underlyingErr))
	})
}
