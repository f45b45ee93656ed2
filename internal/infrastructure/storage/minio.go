package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"memorial-backend/internal/config"
)

// ErrURLResolution is returned by PublicURL when the bucket is not
// publicly readable, so no public URL can be derived for the object.
var ErrURLResolution = errors.New("public url resolution failed")

// MinIOStorage is the media store client for a single bucket.
// The application holds one instance per bucket (media, memorial-media).
type MinIOStorage struct {
	client *minio.Client
	bucket string
	public bool
}

// NewMinIOStorage creates a client for one bucket, creating the bucket
// if it does not exist yet.
func NewMinIOStorage(cfg config.MinIOConfig, bucket string) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client: client,
		bucket: bucket,
		public: true,
	}, nil
}

// Upload writes an object. The write is all-or-nothing: on error the
// object is not present under the key.
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		reader,
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			CacheControl: "max-age=3600",
		},
	)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

// PublicURL derives the public URL for a key without a network round
// trip. It fails with ErrURLResolution when the bucket blocks public
// reads.
func (s *MinIOStorage) PublicURL(key string) (string, error) {
	if !s.public {
		return "", fmt.Errorf("%w: bucket %s is not public", ErrURLResolution, s.bucket)
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLResolution)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key), nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes every object under a prefix. Used when an
// entity is torn down and all of its media should go with it.
func (s *MinIOStorage) DeleteByPrefix(ctx context.Context, prefix string) error {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return fmt.Errorf("error listing objects: %w", object.Err)
		}

		err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{})
		if err != nil {
			return fmt.Errorf("failed to delete object %s: %w", object.Key, err)
		}
	}

	return nil
}

// KeyFromURL recovers the object key from a public URL produced by
// PublicURL. Returns false when the URL does not belong to this bucket.
func (s *MinIOStorage) KeyFromURL(publicURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.client.EndpointURL().String(), s.bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}
