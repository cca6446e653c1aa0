// Package objectstore provides the remote module store used to fetch parser
// modules by (bucket, key).
package objectstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the bucket or object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrAccessDenied is returned when the caller may not read the object.
	ErrAccessDenied = errors.New("access denied")
)

// Store fetches whole objects.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}
