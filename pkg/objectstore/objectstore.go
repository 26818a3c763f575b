// Package objectstore defines the content storage contract for receipt images.
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound indicates no object exists under the given key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object without its payload.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStore stores and retrieves binary objects by key.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// IsObjectNotFound checks if an error indicates a missing object.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
