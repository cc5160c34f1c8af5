// Package storage provides S3-compatible object storage for article images.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/middleware"
	"pressroom/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const opTimeout = 15 * time.Second

// ObjectStorage uploads and removes article images.
type ObjectStorage interface {
	Upload(ctx context.Context, userID uint, filename, contentType string, content []byte) (string, error)
	Remove(ctx context.Context, objectURL string) error
}

// S3Storage implements ObjectStorage against any S3-compatible endpoint.
type S3Storage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// NewS3Storage builds an S3 client from configuration and ensures the
// bucket exists.
func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	s := &S3Storage{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: cfg.S3Endpoint,
		useSSL:   cfg.S3UseSSL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create storage bucket: %w", err)
		}
	}

	return s, nil
}

// Upload stores content under articles/<userID>/<uuid><ext> and returns
// the public object URL.
func (s *S3Storage) Upload(ctx context.Context, userID uint, filename, contentType string, content []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("articles/%d/%s%s", userID, uuid.New().String(), ext)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		middleware.StorageOperations.WithLabelValues("upload", "error").Inc()
		return "", models.NewUnavailableError("Image storage unavailable", err)
	}
	middleware.StorageOperations.WithLabelValues("upload", "success").Inc()

	return s.objectURL(key), nil
}

// Remove deletes the object the given URL points at. URLs from other
// endpoints are ignored.
func (s *S3Storage) Remove(ctx context.Context, objectURL string) error {
	key := s.keyFromURL(objectURL)
	if key == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		middleware.StorageOperations.WithLabelValues("remove", "error").Inc()
		return models.NewUnavailableError("Image storage unavailable", err)
	}
	middleware.StorageOperations.WithLabelValues("remove", "success").Inc()
	return nil
}

func (s *S3Storage) objectURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

func (s *S3Storage) keyFromURL(objectURL string) string {
	prefix := s.objectURL("")
	if !strings.HasPrefix(objectURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(objectURL, prefix)
}
