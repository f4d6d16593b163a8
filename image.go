package headshot

import (
	"context"
	"encoding/base64"
	"strings"
)

// ImageProvider defines the interface for image generation backends.
type ImageProvider interface {
	// GenerateImage creates a single image from a text prompt.
	GenerateImage(ctx context.Context, prompt string, opts ...ImageOption) (*ImageResponse, error)
}

// ImageResponse holds the one image a generation produces.
type ImageResponse struct {
	// Provider is the backend that produced the image.
	Provider Provider
	// Model is the backend model identifier, if known.
	Model string
	// Base64 is the standard base64 encoding of the image bytes.
	Base64 string
	// MimeType of the decoded image. Defaults to image/png.
	MimeType string
}

// ImageSize represents predefined image dimensions.
type ImageSize string

const (
	ImageSize1024x1024 ImageSize = "1024x1024"
	ImageSize1024x1792 ImageSize = "1024x1792" // Portrait
	ImageSize1792x1024 ImageSize = "1792x1024" // Landscape

	DefaultImageSize = ImageSize1024x1024
)

// ImageQuality specifies the quality level for generated images.
// Only the OpenAI path uses it.
type ImageQuality string

const (
	ImageQualityStandard ImageQuality = "standard"
	ImageQualityHD       ImageQuality = "hd"

	DefaultImageQuality = ImageQualityStandard
)

// DefaultReferenceMimeType is assumed when a reference image carries no mime type.
const DefaultReferenceMimeType = "image/jpeg"

// ReferenceImage is a user supplied photo used to condition generation.
type ReferenceImage struct {
	// Data is base64 image data. A data URI prefix is tolerated.
	Data string `json:"data"`
	// MimeType such as image/png. Optional.
	MimeType string `json:"mimeType,omitempty"`
}

// Mime returns the declared mime type, or the one embedded in a data URI,
// or DefaultReferenceMimeType.
func (r ReferenceImage) Mime() string {
	if r.MimeType != "" {
		return r.MimeType
	}
	if mime, _, ok := splitDataURI(r.Data); ok && mime != "" {
		return mime
	}
	return DefaultReferenceMimeType
}

// Payload returns the raw base64 payload with any data URI prefix removed.
func (r ReferenceImage) Payload() string {
	if _, payload, ok := splitDataURI(r.Data); ok {
		return payload
	}
	return strings.TrimSpace(r.Data)
}

// Bytes decodes the image data.
func (r ReferenceImage) Bytes() ([]byte, error) {
	payload := r.Payload()
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Browsers occasionally strip padding.
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, err
	}
	return data, nil
}

// DataURI renders the image as data:<mime>;base64,<payload>.
func (r ReferenceImage) DataURI() string {
	return "data:" + r.Mime() + ";base64," + r.Payload()
}

func splitDataURI(s string) (mime, payload string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", "", false
	}
	header, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", "", false
	}
	mime, _, _ = strings.Cut(header, ";")
	return mime, payload, true
}
