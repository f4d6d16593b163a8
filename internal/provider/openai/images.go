package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/spetersoncode/headshot"
)

// GenerateImage generates one image from a text prompt.
// Reference images are rejected: the images endpoint used here cannot
// condition on them.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error) {
	options := headshot.ApplyImageOptions(opts...)

	if len(options.ReferenceImages) > 0 {
		return nil, errReferenceImagesUnsupported()
	}

	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	size := options.Size
	if size == "" {
		size = headshot.DefaultImageSize
	}
	quality := options.Quality
	if quality == "" {
		quality = headshot.DefaultImageQuality
	}

	params := openai.ImageGenerateParams{
		Model:          openai.ImageModel(model),
		Prompt:         prompt,
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(size),
		Quality:        openai.ImageGenerateParamsQuality(quality),
		ResponseFormat: openai.ImageGenerateParamsResponseFormat("b64_json"),
	}

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, headshot.NewEmptyResultError(headshot.ProviderOpenAI)
	}

	return &headshot.ImageResponse{
		Provider: headshot.ProviderOpenAI,
		Model:    model,
		Base64:   resp.Data[0].B64JSON,
		MimeType: "image/png",
	}, nil
}
