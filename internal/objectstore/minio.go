package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig configures an S3-compatible store
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseTLS    bool
	PublicURL string
}

// MinioStore stores objects in an S3-compatible service
type MinioStore struct {
	client    *minio.Client
	publicURL string
}

// NewMinioStore creates a MinIO-backed store
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStore{
		client:    client,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload puts body at bucket/path. Without Overwrite an existing object
// fails with ErrObjectExists.
func (m *MinioStore) Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, opts Options) error {
	if !opts.Overwrite {
		_, err := m.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{})
		if err == nil {
			return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, ErrObjectExists)
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return fmt.Errorf("failed to stat %s/%s: %w", bucket, path, err)
		}
	}

	_, err := m.client.PutObject(ctx, bucket, path, body, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// PublicURL returns the anonymous-read URL of bucket/path
func (m *MinioStore) PublicURL(bucket, path string) string {
	return m.publicURL + "/" + bucket + "/" + escapePath(path)
}
