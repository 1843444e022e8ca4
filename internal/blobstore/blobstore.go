package blobstore

import (
	"context"
	"time"
)

// Properties describes a stored blob.
type Properties struct {
	Size         int64
	LastModified time.Time
}

// Store archives raw document bodies and evaluation records. Containers are
// namespaces created on demand; names may contain slashes.
type Store interface {
	// Put writes data under container/name, overwriting any existing blob,
	// and returns a URL-ish locator for the stored blob.
	Put(ctx context.Context, container, name string, data []byte, metadata map[string]string) (string, error)

	// Get reads a blob back.
	Get(ctx context.Context, container, name string) ([]byte, error)

	// GetProperties returns size and modification time for a blob.
	GetProperties(ctx context.Context, container, name string) (*Properties, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, container, name string) error
}
