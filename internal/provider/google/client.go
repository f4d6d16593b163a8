package google

import (
	"context"
	"net/http"

	"google.golang.org/genai"
)

// DefaultImageModel is the Gemini model used for image output.
const DefaultImageModel = "gemini-2.5-flash-image-preview"

// Client wraps the Google GenAI SDK to implement headshot.ImageProvider.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini client with the given API key. With WithVertex
// the key is ignored and Application Default Credentials are used instead.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{model: DefaultImageModel}
	for _, opt := range opts {
		opt(cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient,
	}
	if cfg.project != "" {
		cc.APIKey = ""
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.project
		cc.Location = cfg.location
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Client{
		client: client,
		model:  cfg.model,
	}, nil
}

type clientConfig struct {
	model      string
	baseURL    string
	httpClient *http.Client
	project    string
	location   string
}

// ClientOption configures the Gemini client.
type ClientOption func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at a Gemini-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithVertex routes requests through Vertex AI in the given project.
// An empty location uses us-central1.
func WithVertex(project, location string) ClientOption {
	return func(c *clientConfig) {
		if location == "" {
			location = "us-central1"
		}
		c.project = project
		c.location = location
	}
}
