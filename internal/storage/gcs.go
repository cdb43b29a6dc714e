package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
)

// GCSStore stores objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client    *gcs.Client
	bucket    string
	publicURL string
}

func NewGCSStore(ctx context.Context, cfg config.Config) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	bucket := strings.TrimSpace(cfg.Storage.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &GCSStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(strings.TrimSpace(cfg.Storage.PublicURL), "/"),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, name string, contentType string, body io.Reader) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidObjectName
	}

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, body); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + name, nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidObjectName
	}
	return s.client.Bucket(s.bucket).Object(name).Delete(ctx)
}
