package google

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/spetersoncode/headshot"
	"google.golang.org/genai"
)

// GenerateImage generates one image from a text prompt and optional
// reference images. The prompt is sent first, followed by one inline data
// part per reference image.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error) {
	options := headshot.ApplyImageOptions(opts...)

	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	parts, err := buildParts(prompt, options.ReferenceImages)
	if err != nil {
		return nil, err
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, wrapError(err)
	}

	if blocked := blockReason(resp); blocked != "" {
		return nil, headshot.Classify(headshot.ProviderGemini, "content blocked: "+blocked, errorRules, nil)
	}

	data, mimeType := firstInlineImage(resp)
	if len(data) == 0 {
		return nil, headshot.NewEmptyResultError(headshot.ProviderGemini)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &headshot.ImageResponse{
		Provider: headshot.ProviderGemini,
		Model:    model,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}

// buildParts interleaves the prompt with the reference images.
func buildParts(prompt string, images []headshot.ReferenceImage) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		data, err := img.Bytes()
		if err != nil {
			fe := headshot.NewValidationError("A reference image could not be read.")
			fe.Provider = headshot.ProviderGemini
			fe.Cause = &headshot.ImageError{Op: "decode", URL: "base64", Err: err}
			return nil, fe
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.Mime(), Data: data}})
	}
	return parts, nil
}

// firstInlineImage scans the first candidate for an inline image part.
func firstInlineImage(resp *genai.GenerateContentResponse) ([]byte, string) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil, ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType
		}
	}
	return nil, ""
}

// blockReason reports why Gemini refused to answer, if it did.
func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return string(resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		switch reason := string(resp.Candidates[0].FinishReason); strings.ToUpper(reason) {
		case "SAFETY", "IMAGE_SAFETY", "PROHIBITED_CONTENT", "BLOCKLIST", "SPII":
			return reason
		}
	}
	return ""
}
