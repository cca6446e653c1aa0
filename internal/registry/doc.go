// Package registry provides the central "glue" for the parser module system.
//
// The Registry stores the mapping between constructor names used in module
// manifests (e.g., "NewZipFileParser") and the compiled Go factories that
// build parser instances. It also holds the parser definitions the loader
// produced from manifests, keyed by manifest path and type, so that a module loaded
// once during a run is not decoded again.
//
// Constructors are registered statically at startup by Modules. Definitions
// are registered lazily, the first time the loader reads a manifest, whether
// that manifest is local or was just fetched from the object store.
package registry
