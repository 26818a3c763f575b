// Package extractreceipt resolves a turn's file reference to image bytes and
// runs vision extraction over them.
package extractreceipt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/jpalomar/gastobot/pkg/filecache"
	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/objectstore"
)

// VisionBackend extracts structured receipt data from an image file on disk.
type VisionBackend interface {
	ExtractReceipt(ctx context.Context, imagePath string) (*models.ReceiptDraft, error)
}

// Capability resolves the file reference through an ordered fallback chain —
// local cache by exact path, object store by exact key, then an object-store
// prefix scan where the most recently modified substring match wins — and
// hands the bytes to the vision backend. This order is the single source of
// truth for resolution.
type Capability struct {
	vision VisionBackend
	store  objectstore.ObjectStore
	cache  *filecache.Cache
	prefix string
	logger *slog.Logger
}

func New(logger *slog.Logger, vision VisionBackend, store objectstore.ObjectStore, cache *filecache.Cache, scanPrefix string) *Capability {
	return &Capability{
		vision: vision,
		store:  store,
		cache:  cache,
		prefix: scanPrefix,
		logger: logger,
	}
}

func (c *Capability) Name() models.Action {
	return models.ActionExtractReceipt
}

// Execute adds a receipt draft to the state if the reference resolves.
// Without a file reference, or with a draft already present, it is an
// idempotent no-op. Unresolvable bytes leave the state unchanged so a later
// turn can retry.
func (c *Capability) Execute(ctx context.Context, state models.WorkflowState) (models.WorkflowState, error) {
	if state.FileRef == "" || state.ReceiptDraft != nil {
		return state, nil
	}

	data, ok := c.resolve(ctx, state.FileRef)
	if !ok {
		c.logger.WarnContext(ctx, "File reference did not resolve, skipping extraction", "file_ref", state.FileRef)

		return state, nil
	}

	draft, err := c.extract(ctx, state.FileRef, data)
	if err != nil {
		return state, fmt.Errorf("receipt extraction failed: %w", err)
	}

	return state.WithReceiptDraft(draft), nil
}

// extract persists the bytes to a scoped temporary file, runs the vision
// backend against it, and releases the file on every exit path.
func (c *Capability) extract(ctx context.Context, fileRef string, data []byte) (*models.ReceiptDraft, error) {
	suffix := path.Ext(fileRef)
	if suffix == "" {
		suffix = ".jpg"
	}

	temp, err := os.CreateTemp("", "receipt-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary image file: %w", err)
	}

	defer func() {
		if err := os.Remove(temp.Name()); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("Failed to remove temporary image file", "path", temp.Name(), "error", err)
		}
	}()

	_, err = temp.Write(data)
	if closeErr := temp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return nil, fmt.Errorf("failed to write temporary image file: %w", err)
	}

	return c.vision.ExtractReceipt(ctx, temp.Name())
}

func (c *Capability) resolve(ctx context.Context, fileRef string) ([]byte, bool) {
	if data, ok := c.cache.Lookup(fileRef); ok {
		return data, true
	}

	data, err := c.store.Get(ctx, fileRef)
	if err == nil {
		return data, true
	}

	if !objectstore.IsObjectNotFound(err) {
		c.logger.WarnContext(ctx, "Object store lookup failed", "file_ref", fileRef, "error", err)
	}

	return c.scanByPrefix(ctx, fileRef)
}

// scanByPrefix lists the configured prefix and picks the most recently
// modified key containing the reference as a substring.
func (c *Capability) scanByPrefix(ctx context.Context, fileRef string) ([]byte, bool) {
	objects, err := c.store.List(ctx, c.prefix)
	if err != nil {
		c.logger.WarnContext(ctx, "Object store prefix scan failed", "prefix", c.prefix, "error", err)

		return nil, false
	}

	var best *objectstore.ObjectInfo

	for i := range objects {
		if !strings.Contains(objects[i].Key, fileRef) {
			continue
		}

		if best == nil || objects[i].LastModified.After(best.LastModified) {
			best = &objects[i]
		}
	}

	if best == nil {
		return nil, false
	}

	data, err := c.store.Get(ctx, best.Key)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to fetch scanned object", "key", best.Key, "error", err)

		return nil, false
	}

	return data, true
}
