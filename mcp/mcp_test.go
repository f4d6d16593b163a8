package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spetersoncode/headshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records the last request and returns a canned result.
type fakeGenerator struct {
	prompt  string
	options *headshot.ImageOptions
	resp    *headshot.ImageResponse
	err     error
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error) {
	f.prompt = prompt
	f.options = headshot.ApplyImageOptions(opts...)
	return f.resp, f.err
}

func startClient(t *testing.T, gen Generator) *client.Client {
	t.Helper()
	c, err := client.NewInProcessClient(NewServer(gen, WithName("test-server"), WithVersion("1.0.0")))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { c.Close() })

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "test-client",
				Version: "1.0.0",
			},
		},
	})
	require.NoError(t, err)
	return c
}

func callGenerate(t *testing.T, c *client.Client, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: ToolName, Arguments: args},
	})
	require.NoError(t, err)
	return result
}

func TestServerIntegration(t *testing.T) {
	t.Run("lists the generation tool", func(t *testing.T) {
		c := startClient(t, &fakeGenerator{})

		result, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
		require.NoError(t, err)

		require.Len(t, result.Tools, 1)
		assert.Equal(t, ToolName, result.Tools[0].Name)
		assert.Contains(t, result.Tools[0].InputSchema.Required, "prompt")
	})

	t.Run("returns the image", func(t *testing.T) {
		gen := &fakeGenerator{resp: &headshot.ImageResponse{
			Provider: headshot.ProviderGemini,
			Base64:   "aW1hZ2U=",
			MimeType: "image/png",
		}}
		c := startClient(t, gen)

		result := callGenerate(t, c, map[string]any{
			"prompt":   "corporate headshot",
			"provider": "gemini",
			"quality":  "hd",
		})

		assert.False(t, result.IsError)
		assert.Equal(t, "corporate headshot", gen.prompt)
		assert.Equal(t, "gemini", gen.options.Provider)
		assert.Equal(t, headshot.ImageQualityHD, gen.options.Quality)

		var image *mcp.ImageContent
		for _, content := range result.Content {
			if ic, ok := content.(mcp.ImageContent); ok {
				image = &ic
			}
		}
		require.NotNil(t, image)
		assert.Equal(t, "aW1hZ2U=", image.Data)
		assert.Equal(t, "image/png", image.MIMEType)
	})

	t.Run("provider failure is a tool error with suggestion", func(t *testing.T) {
		gen := &fakeGenerator{err: &headshot.FriendlyError{
			Kind:       headshot.KindRateLimit,
			Message:    "The image service is busy.",
			Suggestion: "Please wait a minute and try again.",
			Retryable:  true,
		}}
		c := startClient(t, gen)

		result := callGenerate(t, c, map[string]any{"prompt": "headshot"})

		assert.True(t, result.IsError)
		require.Len(t, result.Content, 1)
		text, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "The image service is busy. Please wait a minute and try again.", text.Text)
	})

	t.Run("missing prompt is a tool error", func(t *testing.T) {
		gen := &fakeGenerator{}
		c := startClient(t, gen)

		result := callGenerate(t, c, map[string]any{})

		assert.True(t, result.IsError)
		assert.Empty(t, gen.prompt, "generator not called")
	})

	t.Run("blank prompt fails validation", func(t *testing.T) {
		gen := &fakeGenerator{}
		c := startClient(t, gen)

		result := callGenerate(t, c, map[string]any{"prompt": "   "})

		assert.True(t, result.IsError)
		assert.Empty(t, gen.prompt)
	})
}
