package filecache

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes cache entries older than the retention window.
type Janitor struct {
	cache     *Cache
	retention time.Duration
	logger    *slog.Logger
	scheduler *cron.Cron
}

// NewJanitor builds a janitor sweeping on the given cron schedule, e.g.
// "@every 1h".
func NewJanitor(logger *slog.Logger, cache *Cache, schedule string, retention time.Duration) (*Janitor, error) {
	janitor := &Janitor{
		cache:     cache,
		retention: retention,
		logger:    logger,
		scheduler: cron.New(),
	}

	_, err := janitor.scheduler.AddFunc(schedule, janitor.Sweep)
	if err != nil {
		return nil, err
	}

	return janitor, nil
}

// Start begins the sweep schedule in its own goroutine.
func (j *Janitor) Start() {
	j.scheduler.Start()
}

// Stop halts the schedule; a running sweep finishes first.
func (j *Janitor) Stop() {
	ctx := j.scheduler.Stop()
	<-ctx.Done()
}

// Sweep removes every entry older than the retention window.
func (j *Janitor) Sweep() {
	cutoff := time.Now().Add(-j.retention)
	removed := 0

	entries, err := os.ReadDir(j.cache.Dir())
	if err != nil {
		j.logger.Error("Failed to read cache directory", "dir", j.cache.Dir(), "error", err)

		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.cache.Dir(), entry.Name())

		err = os.Remove(path)
		if err != nil {
			j.logger.Warn("Failed to remove stale cache entry", "path", path, "error", err)

			continue
		}

		removed++
	}

	if removed > 0 {
		j.logger.Info("Swept stale cache entries", "removed", removed)
	}
}
