// Package resolver maps a parser type name, plus optional remote source
// hints, to the location of its module manifest.
//
// Local modules are found by convention inside the modules directory and are
// never checked for existence here; a missing file surfaces from the loader.
// Remote modules are fetched from an object store into a per-run staging
// directory, together with the colocated base contract manifest. Each
// distinct (bucket, path, type) key is fetched at most once per run, even
// when many workers ask for it concurrently.
package resolver
