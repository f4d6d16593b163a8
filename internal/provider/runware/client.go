package runware

import (
	"context"
	"net/http"
	"time"

	"github.com/spetersoncode/headshot"
)

// DefaultURL is the vendor websocket endpoint.
const DefaultURL = "wss://ws-api.runware.ai/v1"

// Config holds the PhotoMaker task defaults.
type Config struct {
	URL   string
	Model string
	Style string
	// Strength is the style strength, 1 to 50. Zero selects the default.
	Strength       int
	Width          int
	Height         int
	Steps          int
	TriggerWord    string
	NegativePrompt string
	OutputFormat   string
	// CallbackGrace bounds how long to wait for images after the task was
	// acknowledged without one.
	CallbackGrace time.Duration
}

// DefaultConfig returns the PhotoMaker defaults used for headshots.
func DefaultConfig() Config {
	return Config{
		URL:           DefaultURL,
		Model:         "civitai:139562@344487",
		Style:         "No style",
		Strength:      15,
		Width:         1024,
		Height:        1024,
		Steps:         20,
		TriggerWord:   DefaultTriggerWord,
		OutputFormat:  "PNG",
		CallbackGrace: time.Minute,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.URL == "" {
		c.URL = d.URL
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Style == "" {
		c.Style = d.Style
	}
	if c.Strength == 0 {
		c.Strength = d.Strength
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.Steps == 0 {
		c.Steps = d.Steps
	}
	if c.TriggerWord == "" {
		c.TriggerWord = d.TriggerWord
	}
	if c.OutputFormat == "" {
		c.OutputFormat = d.OutputFormat
	}
	if c.CallbackGrace == 0 {
		c.CallbackGrace = d.CallbackGrace
	}
	return c
}

// Client runs PhotoMaker tasks against the vendor websocket API.
// Each generation opens its own session.
type Client struct {
	apiKey     string
	cfg        Config
	httpClient *http.Client
}

// ClientOption configures the Runware client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for the websocket handshake
// and for downloading results.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Runware client. Zero Config fields take their defaults.
func New(apiKey string, cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		cfg:        cfg.withDefaults(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// WithSession opens an authenticated session, runs fn, and closes the
// session on every exit path.
func (c *Client) WithSession(ctx context.Context, fn func(*Session) error) error {
	if c.apiKey == "" {
		return headshot.NewMissingConfigError(headshot.ProviderRunware, "RUNWARE_API_KEY")
	}

	s, err := dial(ctx, c.cfg.URL, c.apiKey, c.httpClient)
	if err != nil {
		return wrapError(err)
	}
	defer s.Close()

	return fn(s)
}
