// Package storage mirrors stored profile images into S3-compatible object storage.
// The archive is write-only from the application's point of view; the database
// stays the source of truth.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// ImageArchive stores and removes archived image objects.
type ImageArchive interface {
	// EnsureBucketExists creates the archive bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context) error

	// PutImage writes data under key. Writing the same key twice is harmless.
	PutImage(ctx context.Context, key, contentType string, data []byte) error

	// RemoveImage deletes key. Removing a missing key is not an error.
	RemoveImage(ctx context.Context, key string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketProfileImages() string
	IsMinIOEnabled() bool
}

// ObjectKey builds the archive key <ownerType>/<ownerId>/<fingerprint>.
func ObjectKey(ownerType string, ownerID int64, fingerprint string) string {
	return fmt.Sprintf("%s/%d/%s", strings.ToLower(ownerType), ownerID, strings.ToLower(fingerprint))
}
