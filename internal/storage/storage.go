// Package storage keeps profile photo assets on the local filesystem or in
// S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage saves and removes media assets addressed by slash-separated keys
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	// Delete removes the asset; a missing asset is not an error
	Delete(ctx context.Context, key string) error
	// URL returns the public address of the asset
	URL(key string) string
}

// NewPhotoKey returns a fresh key for a profile photo with the given extension
func NewPhotoKey(ext string, now time.Time) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("user_profiles/photos/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New(), ext)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor maps an image content type to a file extension
func ExtensionFor(contentType string) string {
	return extensions[strings.ToLower(contentType)]
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "../") || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
