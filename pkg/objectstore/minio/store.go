// Package minio provides a MinIO-backed object store for receipt images.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/jpalomar/gastobot/pkg/objectstore"
)

// Store implements objectstore.ObjectStore on a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// Config carries the connection settings for a MinIO-compatible endpoint.
// Endpoint accepts either host:port or a URL; an https scheme enables TLS.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// NewStore connects to the endpoint and ensures the bucket exists.
func NewStore(ctx context.Context, logger *slog.Logger, cfg Config) (*Store, error) {
	host, secure, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	store := &Store{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}

	err = store.ensureBucket(ctx)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Get fetches the full payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	defer func() {
		err := object.Close()
		if err != nil {
			s.logger.Error("failed to close object reader", "key", key, "error", err)
		}
	}()

	data, err := io.ReadAll(object)
	if err != nil {
		response := minio.ToErrorResponse(err)
		if response.Code == "NoSuchKey" {
			return nil, objectstore.ErrObjectNotFound
		}

		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

// Put uploads the payload under key, creating the bucket if needed.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}

// List returns metadata for every object under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	results := make([]objectstore.ObjectInfo, 0)

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, object.Err)
		}

		results = append(results, objectstore.ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			ContentType:  object.ContentType,
			LastModified: object.LastModified,
		})
	}

	return results, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	s.logger.InfoContext(ctx, "Created object store bucket", "bucket", s.bucket)

	return nil
}

func parseEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("object store endpoint is required")
	}

	if !strings.Contains(endpoint, "://") {
		return endpoint, false, nil
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse object store endpoint: %w", err)
	}

	host := parsed.Host
	if host == "" {
		host = parsed.Path
	}

	return host, parsed.Scheme == "https", nil
}
