package headshot

// ImageOptions contains configuration for an image generation request.
type ImageOptions struct {
	Provider        string
	Model           string
	Size            ImageSize
	Quality         ImageQuality
	ReferenceImages []ReferenceImage
}

// ImageOption is a functional option for configuring image generation requests.
type ImageOption func(*ImageOptions)

// WithProvider requests a specific backend. Unknown values are ignored
// during resolution.
func WithProvider(provider string) ImageOption {
	return func(o *ImageOptions) {
		o.Provider = provider
	}
}

// WithImageModel overrides the backend's default model.
func WithImageModel(model string) ImageOption {
	return func(o *ImageOptions) {
		o.Model = model
	}
}

// WithImageSize sets the dimensions for generated images.
func WithImageSize(size ImageSize) ImageOption {
	return func(o *ImageOptions) {
		o.Size = size
	}
}

// WithImageQuality sets the quality level for generated images.
// Supported values: "standard", "hd"
func WithImageQuality(q ImageQuality) ImageOption {
	return func(o *ImageOptions) {
		o.Quality = q
	}
}

// WithReferenceImages attaches conditioning photos to the request.
func WithReferenceImages(images ...ReferenceImage) ImageOption {
	return func(o *ImageOptions) {
		o.ReferenceImages = append(o.ReferenceImages, images...)
	}
}

// ApplyImageOptions applies functional options to an ImageOptions struct.
func ApplyImageOptions(opts ...ImageOption) *ImageOptions {
	o := &ImageOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
