package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidObjectName = errors.New("invalid_object_name")
	ErrEmptyUpload       = errors.New("empty_upload")
)

// ObjectStore resolves uploaded payment-proof files to durable URLs.
// The invoice core only ever stores the returned string.
type ObjectStore interface {
	Put(ctx context.Context, name string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}
