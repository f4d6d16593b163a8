package headshot

import "strings"

// Provider identifies an image generation backend.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"

	// ProviderRunware is the PhotoMaker vendor. It is only reachable through
	// its own endpoint and is never chosen by ResolveProvider.
	ProviderRunware Provider = "runware"
)

// FallbackProvider is used when neither the request nor the configuration
// names a valid provider.
const FallbackProvider = ProviderOpenAI

// ParseProvider normalizes s against the routable providers.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

// DefaultProvider validates a configured default, falling back to
// FallbackProvider when it is unset or unknown.
func DefaultProvider(configured string) Provider {
	if p, ok := ParseProvider(configured); ok {
		return p
	}
	return FallbackProvider
}

// ResolveProvider picks exactly one provider for a request.
//
// An explicit, valid provider wins over the configured default. Requests
// carrying reference images are moved from OpenAI to Gemini because the
// OpenAI integration cannot condition on images.
func ResolveProvider(explicit string, referenceImages int, configuredDefault string) Provider {
	base, ok := ParseProvider(explicit)
	if !ok {
		base = DefaultProvider(configuredDefault)
	}
	if base == ProviderOpenAI && referenceImages > 0 {
		return ProviderGemini
	}
	return base
}
