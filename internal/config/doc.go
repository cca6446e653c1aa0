// Package config defines the format-agnostic representation of a job
// definition, along with the Loader interface implemented by each on-disk
// format.
//
// Loaders only report syntax errors. They never enforce the transformation
// schema: raw entries are handed to the job package, which validates the
// whole definition in one pass before anything runs.
package config
