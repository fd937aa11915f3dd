package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spec-kit/recruiting-service/internal/config"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// FileStore abstracts resume file storage. Backed by the local
// filesystem or an S3-compatible object store interchangeably; the
// concrete implementation is selected once at startup from config.
type FileStore interface {
	Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// New selects the configured backend.
func New(cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalStore(cfg.LocalDir)
	case "s3":
		return NewMinioStore(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
