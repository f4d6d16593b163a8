package headshot

import (
	"fmt"
	"strings"
)

// Limits applied to inbound generation requests.
const (
	MaxReferenceImages     = 4
	MaxReferenceImageBytes = 1 << 20
	MaxPromptLength        = 4000
)

// GenerationRequest is the JSON body accepted by the generation endpoints.
type GenerationRequest struct {
	Prompt          string           `json:"prompt"`
	ReferenceImages []ReferenceImage `json:"imageBase64Array,omitempty"`
	Provider        string           `json:"provider,omitempty"`
	Size            ImageSize        `json:"size,omitempty"`
	Quality         ImageQuality     `json:"quality,omitempty"`
}

// Validate checks the request against the inbound limits.
// Failures are *FriendlyError values of kind KindValidation or KindTooLarge.
func (r *GenerationRequest) Validate() error {
	prompt := strings.TrimSpace(r.Prompt)
	if prompt == "" {
		return NewValidationError("A prompt is required.")
	}
	if len(prompt) > MaxPromptLength {
		return NewValidationError(fmt.Sprintf("Prompts are limited to %d characters.", MaxPromptLength))
	}
	if len(r.ReferenceImages) > MaxReferenceImages {
		return NewValidationError(fmt.Sprintf("You can upload at most %d reference images.", MaxReferenceImages))
	}
	for i, img := range r.ReferenceImages {
		if !strings.HasPrefix(img.Mime(), "image/") {
			return NewValidationError(fmt.Sprintf("Reference image %d is not an image.", i+1))
		}
		data, err := img.Bytes()
		if err != nil {
			fe := NewValidationError(fmt.Sprintf("Reference image %d could not be read.", i+1))
			fe.Cause = &ImageError{Op: "decode", URL: "base64", Err: err}
			return fe
		}
		if len(data) == 0 {
			return NewValidationError(fmt.Sprintf("Reference image %d is empty.", i+1))
		}
		if len(data) > MaxReferenceImageBytes {
			return NewTooLargeError(fmt.Sprintf("Reference image %d is larger than 1MB.", i+1))
		}
	}
	return nil
}

// Options converts the request into image options.
func (r *GenerationRequest) Options() []ImageOption {
	var opts []ImageOption
	if r.Provider != "" {
		opts = append(opts, WithProvider(r.Provider))
	}
	if r.Size != "" {
		opts = append(opts, WithImageSize(r.Size))
	}
	if r.Quality != "" {
		opts = append(opts, WithImageQuality(r.Quality))
	}
	if len(r.ReferenceImages) > 0 {
		opts = append(opts, WithReferenceImages(r.ReferenceImages...))
	}
	return opts
}
