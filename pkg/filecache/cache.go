// Package filecache provides the local ephemeral cache for downloaded receipt
// images. It is the first stop in the extractor's resolution chain, ahead of
// the object store.
package filecache

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Cache stores image payloads on local disk, keyed by file reference. Entries
// are disposable; the janitor sweeps anything older than the retention window.
type Cache struct {
	dir string
}

// New creates the cache directory if needed.
func New(dir string) (*Cache, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// Lookup resolves a file reference to cached bytes. A reference that is
// itself an existing local path wins over a cache entry.
func (c *Cache) Lookup(ref string) ([]byte, bool) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		data, err := os.ReadFile(ref)
		if err == nil {
			return data, true
		}
	}

	data, err := os.ReadFile(c.pathFor(ref))
	if err != nil {
		return nil, false
	}

	return data, true
}

// Store writes the payload under the reference and returns the cache path.
func (c *Cache) Store(ref string, data []byte) (string, error) {
	path := c.pathFor(ref)

	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to write cache entry for %s: %w", ref, err)
	}

	return path, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// pathFor derives a flat, filesystem-safe file name from a reference that may
// contain slashes (object keys do).
func (c *Cache) pathFor(ref string) string {
	return filepath.Join(c.dir, url.PathEscape(ref))
}
