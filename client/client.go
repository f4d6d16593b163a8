package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spetersoncode/headshot"
	"github.com/spetersoncode/headshot/internal/provider/google"
	"github.com/spetersoncode/headshot/internal/provider/openai"
	"github.com/spetersoncode/headshot/internal/provider/runware"
)

// APIKeys holds API keys for different providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	OpenAI  string
	Gemini  string
	Runware string
}

// Endpoints overrides provider base URLs. Empty fields use the vendor default.
type Endpoints struct {
	OpenAI  string
	Gemini  string
	Runware string
}

// Vertex routes Gemini through Vertex AI when Project is set.
// Credentials come from Application Default Credentials.
type Vertex struct {
	Project  string
	Location string
}

// Models overrides provider default models.
type Models struct {
	OpenAI string
	Gemini string
}

// Config holds configuration for creating a unified client.
type Config struct {
	// APIKeys contains authentication keys for each provider.
	APIKeys APIKeys

	// DefaultProvider is used when a request does not name a valid provider.
	// Unknown values fall back to headshot.FallbackProvider.
	DefaultProvider string

	Endpoints Endpoints
	Models    Models
	Vertex    Vertex

	// HTTPClient is shared by all providers. Nil uses http.DefaultClient.
	HTTPClient *http.Client

	// Runware holds PhotoMaker task defaults. Zero fields take defaults.
	Runware runware.Config

	// Events is an optional channel for receiving client operation events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event
}

// Client routes image requests to exactly one provider per request.
// Provider clients are lazily initialized when first needed.
// Client is safe for concurrent use.
type Client struct {
	apiKeys         APIKeys
	defaultProvider headshot.Provider
	endpoints       Endpoints
	models          Models
	vertex          Vertex
	httpClient      *http.Client
	runwareConfig   runware.Config
	events          chan<- Event

	// Lazy-initialized providers (protected by mutex)
	mu            sync.RWMutex
	openaiClient  *openai.Client
	geminiClient  *google.Client
	geminiInitErr error
	runwareClient *runware.Client
}

// New creates a unified client with the given configuration.
func New(cfg Config) *Client {
	return &Client{
		apiKeys:         cfg.APIKeys,
		defaultProvider: headshot.DefaultProvider(cfg.DefaultProvider),
		endpoints:       cfg.Endpoints,
		models:          cfg.Models,
		vertex:          cfg.Vertex,
		httpClient:      cfg.HTTPClient,
		runwareConfig:   cfg.Runware,
		events:          cfg.Events,
	}
}

// DefaultProvider returns the validated configured default.
func (c *Client) DefaultProvider() headshot.Provider {
	return c.defaultProvider
}

// getOpenAIClient returns the OpenAI client, initializing it if needed.
func (c *Client) getOpenAIClient() (*openai.Client, error) {
	c.mu.RLock()
	if c.openaiClient != nil {
		defer c.mu.RUnlock()
		return c.openaiClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.openaiClient != nil {
		return c.openaiClient, nil
	}

	if c.apiKeys.OpenAI == "" {
		return nil, headshot.NewMissingConfigError(headshot.ProviderOpenAI, "OPENAI_API_KEY")
	}

	c.openaiClient = openai.New(c.apiKeys.OpenAI,
		openai.WithModel(c.models.OpenAI),
		openai.WithBaseURL(c.endpoints.OpenAI),
		openai.WithHTTPClient(c.httpClient),
	)
	return c.openaiClient, nil
}

// getGeminiClient returns the Gemini client, initializing it if needed.
// An initialization failure is cached.
func (c *Client) getGeminiClient(ctx context.Context) (*google.Client, error) {
	c.mu.RLock()
	if c.geminiClient != nil {
		defer c.mu.RUnlock()
		return c.geminiClient, nil
	}
	if c.geminiInitErr != nil {
		defer c.mu.RUnlock()
		return nil, c.geminiInitErr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.geminiClient != nil {
		return c.geminiClient, nil
	}
	if c.geminiInitErr != nil {
		return nil, c.geminiInitErr
	}

	opts := []google.ClientOption{
		google.WithModel(c.models.Gemini),
		google.WithBaseURL(c.endpoints.Gemini),
		google.WithHTTPClient(c.httpClient),
	}
	if c.vertex.Project != "" {
		opts = append(opts, google.WithVertex(c.vertex.Project, c.vertex.Location))
	} else if c.apiKeys.Gemini == "" {
		return nil, headshot.NewMissingConfigError(headshot.ProviderGemini, "GEMINI_API_KEY")
	}

	// The cached client outlives the request that triggered its creation.
	client, err := google.New(context.WithoutCancel(ctx), c.apiKeys.Gemini, opts...)
	if err != nil {
		fe := headshot.NewMissingConfigError(headshot.ProviderGemini, "GEMINI_API_KEY")
		fe.Cause = fmt.Errorf("failed to initialize Gemini client: %w", err)
		c.geminiInitErr = fe
		return nil, c.geminiInitErr
	}

	c.geminiClient = client
	return c.geminiClient, nil
}

// getRunwareClient returns the Runware client, initializing it if needed.
func (c *Client) getRunwareClient() (*runware.Client, error) {
	c.mu.RLock()
	if c.runwareClient != nil {
		defer c.mu.RUnlock()
		return c.runwareClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.runwareClient != nil {
		return c.runwareClient, nil
	}

	if c.apiKeys.Runware == "" {
		return nil, headshot.NewMissingConfigError(headshot.ProviderRunware, "RUNWARE_API_KEY")
	}

	cfg := c.runwareConfig
	if c.endpoints.Runware != "" {
		cfg.URL = c.endpoints.Runware
	}
	c.runwareClient = runware.New(c.apiKeys.Runware, cfg, runware.WithHTTPClient(c.httpClient))
	return c.runwareClient, nil
}

// Resolve reports which provider GenerateImage would use for opts.
func (c *Client) Resolve(opts ...headshot.ImageOption) headshot.Provider {
	options := headshot.ApplyImageOptions(opts...)
	return headshot.ResolveProvider(options.Provider, len(options.ReferenceImages), string(c.defaultProvider))
}

// getImageProvider returns the image provider for a resolved provider.
func (c *Client) getImageProvider(ctx context.Context, provider headshot.Provider) (headshot.ImageProvider, error) {
	switch provider {
	case headshot.ProviderOpenAI:
		client, err := c.getOpenAIClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case headshot.ProviderGemini:
		client, err := c.getGeminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case headshot.ProviderRunware:
		client, err := c.getRunwareClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, headshot.NewMissingConfigError(provider, "IMAGE_PROVIDER")
	}
}

// GenerateImage creates one image from a text prompt and optional
// reference images. The provider is chosen by Resolve; exactly one provider
// is called and failures are not retried.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error) {
	return c.generate(ctx, "image", c.Resolve(opts...), prompt, opts)
}

// GeneratePhotoMaker creates one identity-preserving headshot through the
// PhotoMaker vendor. At least one reference image is required. Provider
// options are ignored.
func (c *Client) GeneratePhotoMaker(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error) {
	options := headshot.ApplyImageOptions(opts...)
	if len(options.ReferenceImages) == 0 {
		fe := headshot.NewValidationError("Please upload at least one reference photo.")
		fe.Provider = headshot.ProviderRunware
		return nil, fe
	}
	return c.generate(ctx, "photomaker", headshot.ProviderRunware, prompt, opts)
}

func (c *Client) generate(ctx context.Context, operation string, provider headshot.Provider, prompt string, opts []headshot.ImageOption) (*headshot.ImageResponse, error) {
	refs := len(headshot.ApplyImageOptions(opts...).ReferenceImages)

	imageProvider, err := c.getImageProvider(ctx, provider)
	if err != nil {
		emit(c.events, Event{
			Type:            EventRequestError,
			Operation:       operation,
			Provider:        provider,
			ReferenceImages: refs,
			Error:           err,
		})
		return nil, err
	}

	start := time.Now()
	emit(c.events, Event{
		Type:            EventRequestStart,
		Operation:       operation,
		Provider:        provider,
		ReferenceImages: refs,
	})

	resp, err := imageProvider.GenerateImage(ctx, prompt, opts...)
	if err != nil {
		fe := headshot.AsFriendly(err)
		if fe.Provider == "" {
			fe.Provider = provider
		}
		err = fe
		emit(c.events, Event{
			Type:            EventRequestError,
			Operation:       operation,
			Provider:        provider,
			ReferenceImages: refs,
			Duration:        time.Since(start),
			Error:           err,
		})
		return nil, err
	}

	emit(c.events, Event{
		Type:            EventRequestComplete,
		Operation:       operation,
		Provider:        provider,
		Model:           resp.Model,
		ReferenceImages: refs,
		Duration:        time.Since(start),
	})
	return resp, nil
}
