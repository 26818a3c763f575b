// Package memory provides an in-memory object store for tests and local development.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jpalomar/gastobot/pkg/objectstore"
)

type storedObject struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	lastModified time.Time
}

// Store implements objectstore.ObjectStore backed by a map.
type Store struct {
	mu      sync.RWMutex
	objects map[string]storedObject
	clock   func() time.Time
}

func NewStore() *Store {
	return &Store{
		objects: make(map[string]storedObject),
		clock:   time.Now,
	}
}

// SetClock overrides the modification-time source. Test hook.
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	object, ok := s.objects[key]
	if !ok {
		return nil, objectstore.ErrObjectNotFound
	}

	data := make([]byte, len(object.data))
	copy(data, object.data)

	return data, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)

	s.objects[key] = storedObject{
		data:         stored,
		contentType:  contentType,
		metadata:     metadata,
		lastModified: s.clock(),
	}

	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]objectstore.ObjectInfo, 0)

	for key, object := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		results = append(results, objectstore.ObjectInfo{
			Key:          key,
			Size:         int64(len(object.data)),
			ContentType:  object.contentType,
			LastModified: object.lastModified,
		})
	}

	return results, nil
}
