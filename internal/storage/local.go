package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads to a local directory. Development only.
type LocalStore struct {
	dir       string
	publicURL string
}

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{
		dir:       dir,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
	}, nil
}

func (s *LocalStore) Put(ctx context.Context, name string, contentType string, body io.Reader) (string, error) {
	name = sanitizeName(name)
	if name == "" {
		return "", ErrInvalidObjectName
	}

	path := filepath.Join(s.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	written, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	if written == 0 {
		os.Remove(path)
		return "", ErrEmptyUpload
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + name, nil
	}
	return "file://" + path, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	name = sanitizeName(name)
	if name == "" {
		return ErrInvalidObjectName
	}
	return os.Remove(filepath.Join(s.dir, name))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "..", "")
	return strings.TrimLeft(name, "/")
}
