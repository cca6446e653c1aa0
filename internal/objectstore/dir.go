package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is a Store backed by a local directory: each bucket is a
// subdirectory of Root and each key a relative file path inside it.
type Dir struct {
	Root string
}

// NewDir creates a directory-backed store.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Get reads root/bucket/key.
func (d *Dir) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(bucket) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, ErrAccessDenied)
	}

	data, err := os.ReadFile(filepath.Join(d.Root, bucket, filepath.FromSlash(key)))
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, ErrAccessDenied)
	default:
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
}
