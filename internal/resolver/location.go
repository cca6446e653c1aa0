package resolver

import (
	"fmt"
	"path/filepath"
)

// Key identifies a remote module.
type Key struct {
	Bucket string
	Path   string
	Type   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s#%s", k.Bucket, k.Path, k.Type)
}

// id encodes the key unambiguously. String is for display only: a bucket or
// path containing "/" can make two keys print the same.
func (k Key) id() string {
	return fmt.Sprintf("%q|%q|%q", k.Bucket, k.Path, k.Type)
}

// Location is a resolved, loadable module reference.
type Location struct {
	TypeName string
	Module   string
	// Dir holds both the parser manifest and the base contract manifest.
	Dir string
	// Remote is nil for local modules.
	Remote *Key
}

// Manifest returns the path of the parser manifest.
func (l *Location) Manifest() string {
	return filepath.Join(l.Dir, l.Module+ManifestExt)
}

// BaseManifest returns the path of the colocated base contract manifest.
func (l *Location) BaseManifest() string {
	return filepath.Join(l.Dir, BaseModule+ManifestExt)
}

// IsRemote reports whether the module was fetched from the object store.
func (l *Location) IsRemote() bool {
	return l.Remote != nil
}
