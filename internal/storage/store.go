// Package storage persists generated images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that would escape the store.
var ErrInvalidKey = errors.New("invalid object key")

// Store defines the interface for image persistence backends.
// Implementations must be thread-safe.
type Store interface {
	// Put stores data under key and returns a URL for it.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ObjectKey returns a fresh key of the form <user>/<uuid><ext>.
func ObjectKey(userID, ext string) string {
	user := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, userID)
	if user == "" {
		user = "_"
	}
	return user + "/" + uuid.NewString() + ext
}

// ExtensionFor maps an image mime type to a file extension.
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// cleanKey rejects absolute keys and keys containing parent references.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return path.Clean(key), nil
}
