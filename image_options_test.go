package headshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyImageOptions(t *testing.T) {
	t.Run("returns empty options when no options provided", func(t *testing.T) {
		opts := ApplyImageOptions()
		assert.NotNil(t, opts)
		assert.Empty(t, opts.Provider)
		assert.Empty(t, opts.Model)
		assert.Empty(t, opts.Size)
		assert.Empty(t, opts.Quality)
		assert.Empty(t, opts.ReferenceImages)
	})

	t.Run("applies multiple options", func(t *testing.T) {
		opts := ApplyImageOptions(
			WithProvider("gemini"),
			WithImageModel("gemini-2.5-flash-image-preview"),
			WithImageSize(ImageSize1792x1024),
			WithImageQuality(ImageQualityHD),
		)
		assert.Equal(t, "gemini", opts.Provider)
		assert.Equal(t, "gemini-2.5-flash-image-preview", opts.Model)
		assert.Equal(t, ImageSize1792x1024, opts.Size)
		assert.Equal(t, ImageQualityHD, opts.Quality)
	})

	t.Run("later options override earlier ones", func(t *testing.T) {
		opts := ApplyImageOptions(WithProvider("openai"), WithProvider("gemini"))
		assert.Equal(t, "gemini", opts.Provider)
	})

	t.Run("reference images accumulate", func(t *testing.T) {
		opts := ApplyImageOptions(
			WithReferenceImages(ReferenceImage{Data: "YQ=="}),
			WithReferenceImages(ReferenceImage{Data: "Yg=="}, ReferenceImage{Data: "Yw=="}),
		)
		assert.Len(t, opts.ReferenceImages, 3)
	})
}

func TestReferenceImage(t *testing.T) {
	t.Run("plain base64 defaults to jpeg", func(t *testing.T) {
		img := ReferenceImage{Data: "aGVsbG8="}
		assert.Equal(t, DefaultReferenceMimeType, img.Mime())
		assert.Equal(t, "aGVsbG8=", img.Payload())
		assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", img.DataURI())
	})

	t.Run("data URI carries mime and payload", func(t *testing.T) {
		img := ReferenceImage{Data: "data:image/png;base64,aGVsbG8="}
		assert.Equal(t, "image/png", img.Mime())
		assert.Equal(t, "aGVsbG8=", img.Payload())

		data, err := img.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("declared mime wins", func(t *testing.T) {
		img := ReferenceImage{Data: "data:image/png;base64,aGVsbG8=", MimeType: "image/webp"}
		assert.Equal(t, "image/webp", img.Mime())
	})

	t.Run("unpadded base64 decodes", func(t *testing.T) {
		data, err := ReferenceImage{Data: "aGVsbG8"}.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := ReferenceImage{Data: "%%%"}.Bytes()
		assert.Error(t, err)
	})
}
