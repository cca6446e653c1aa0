package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/objectstore"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"golang.org/x/sync/singleflight"
)

// ErrNoStore is returned when remote hints are given but no store is configured.
var ErrNoStore = errors.New("no remote module store configured")

// Resolver locates parser modules. It is safe for concurrent use.
type Resolver struct {
	modulesPath string
	store       objectstore.Store
	stagingRoot string

	group   singleflight.Group
	mu      sync.Mutex
	cache   map[Key]*fetchResult
	fetches atomic.Int64
}

type fetchResult struct {
	loc *Location
	err error
}

// New creates a resolver. stagingRoot is where remote modules are written;
// the caller owns its lifetime. store may be nil when no remote modules are
// expected.
func New(modulesPath string, store objectstore.Store, stagingRoot string) *Resolver {
	return &Resolver{
		modulesPath: modulesPath,
		store:       store,
		stagingRoot: stagingRoot,
		cache:       make(map[Key]*fetchResult),
	}
}

// Fetches returns how many remote modules have been fetched so far.
func (r *Resolver) Fetches() int64 {
	return r.fetches.Load()
}

// Resolve returns the module location for typeName. Without remote hints the
// conventional local location is returned without any I/O.
func (r *Resolver) Resolve(ctx context.Context, typeName string, opts parser.Options) (*Location, error) {
	bucket, srcPath, remote := opts.RemoteHints()
	if !remote {
		return &Location{
			TypeName: typeName,
			Module:   ModuleName(typeName),
			Dir:      r.modulesPath,
		}, nil
	}
	return r.resolveRemote(ctx, Key{Bucket: bucket, Path: srcPath, Type: typeName})
}

func (r *Resolver) resolveRemote(ctx context.Context, key Key) (*Location, error) {
	if res, ok := r.cached(key); ok {
		ctxlog.FromContext(ctx).Debug("Remote module served from run cache.", "key", key.String())
		return res.loc, res.err
	}

	v, _, _ := r.group.Do(key.id(), func() (any, error) {
		// A concurrent caller may have completed the fetch between the cache
		// check above and joining the group.
		if res, ok := r.cached(key); ok {
			return res, nil
		}
		loc, err := r.fetch(ctx, key)
		res := &fetchResult{loc: loc, err: err}
		r.mu.Lock()
		r.cache[key] = res
		r.mu.Unlock()
		return res, nil
	})

	res := v.(*fetchResult)
	return res.loc, res.err
}

func (r *Resolver) cached(key Key) (*fetchResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.cache[key]
	return res, ok
}

// fetch downloads the parser manifest and the base contract manifest into a
// staging directory dedicated to key.
func (r *Resolver) fetch(ctx context.Context, key Key) (*Location, error) {
	logger := ctxlog.FromContext(ctx).With("bucket", key.Bucket, "path", key.Path, "parser", key.Type)

	if r.store == nil {
		return nil, &Error{Key: key, Err: ErrNoStore}
	}
	r.fetches.Add(1)

	loc := &Location{
		TypeName: key.Type,
		Module:   ModuleName(key.Type),
		Dir:      filepath.Join(r.stagingRoot, stagingName(key)),
		Remote:   &key,
	}
	if err := os.MkdirAll(loc.Dir, 0o755); err != nil {
		return nil, &Error{Key: key, Err: fmt.Errorf("create staging directory: %w", err)}
	}

	logger.Info("⬇️ Fetching remote parser module")
	for _, module := range []string{loc.Module, BaseModule} {
		objectKey := path.Join(key.Path, module+ManifestExt)
		data, err := r.store.Get(ctx, key.Bucket, objectKey)
		if err != nil {
			logger.Error("Remote module fetch failed.", "object", objectKey, "error", err)
			return nil, &Error{Key: key, Object: objectKey, Err: err}
		}
		dst := filepath.Join(loc.Dir, module+ManifestExt)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return nil, &Error{Key: key, Object: objectKey, Err: fmt.Errorf("stage module: %w", err)}
		}
		logger.Debug("Staged remote module file.", "object", objectKey, "file", dst, "bytes", len(data))
	}

	return loc, nil
}

// stagingName derives a stable directory name from the key.
func stagingName(key Key) string {
	sum := sha256.Sum256([]byte(key.id()))
	return hex.EncodeToString(sum[:8])
}
