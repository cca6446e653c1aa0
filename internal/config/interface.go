package config

import "context"

// Loader is the interface for a format-specific job definition loader.
type Loader interface {
	// Load reads the given files and translates every transformation entry
	// into the format-agnostic model, preserving file and entry order.
	Load(ctx context.Context, files ...string) (*Job, error)
}
