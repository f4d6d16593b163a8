package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spetersoncode/headshot"
)

// ToolName is the name of the generation tool.
const ToolName = "generate_headshot"

// GenerateHeadshotTool describes the generation tool to MCP clients.
func GenerateHeadshotTool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Generate a professional headshot image from a text prompt."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Description of the headshot to generate"),
		),
		mcp.WithString("provider",
			mcp.Description("Image provider to use. Defaults to the server configuration."),
			mcp.Enum(string(headshot.ProviderOpenAI), string(headshot.ProviderGemini)),
		),
		mcp.WithString("size",
			mcp.Description("Image dimensions"),
			mcp.Enum(string(headshot.ImageSize1024x1024), string(headshot.ImageSize1024x1792), string(headshot.ImageSize1792x1024)),
		),
		mcp.WithString("quality",
			mcp.Description("Image quality"),
			mcp.Enum(string(headshot.ImageQualityStandard), string(headshot.ImageQualityHD)),
		),
	)
}

// NewGenerateHandler returns the MCP handler for generate_headshot.
// Generation failures become tool errors carrying the user-facing message
// and suggestion.
func NewGenerateHandler(gen Generator) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		gr := headshot.GenerationRequest{
			Prompt:   prompt,
			Provider: req.GetString("provider", ""),
			Size:     headshot.ImageSize(req.GetString("size", "")),
			Quality:  headshot.ImageQuality(req.GetString("quality", "")),
		}
		if err := gr.Validate(); err != nil {
			return toolError(err), nil
		}

		resp, err := gen.GenerateImage(ctx, gr.Prompt, gr.Options()...)
		if err != nil {
			return toolError(err), nil
		}

		caption := fmt.Sprintf("Generated with %s", resp.Provider)
		return mcp.NewToolResultImage(caption, resp.Base64, resp.MimeType), nil
	}
}

func toolError(err error) *mcp.CallToolResult {
	fe := headshot.AsFriendly(err)
	msg := fe.Message
	if fe.Suggestion != "" {
		msg += " " + fe.Suggestion
	}
	return mcp.NewToolResultError(msg)
}
