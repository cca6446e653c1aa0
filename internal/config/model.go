package config

// Field names of a raw transformation entry.
const (
	FieldOrigin     = "origin"
	FieldDestiny    = "destiny"
	FieldOperation  = "operationName"
	FieldParserType = "parserTypeName"
	FieldOptions    = "options"
)

// Job is the unified, format-agnostic representation of a job definition.
type Job struct {
	Transformations []*RawTransformation
}

// RawTransformation is a single, unvalidated transformation entry.
type RawTransformation struct {
	// Source is a human readable position, e.g. "jobs/main.hcl:3,1".
	Source string
	// Fields holds the decoded attributes keyed by the Field* names. Values
	// keep whatever Go type the format produced so the validator can report
	// malformed entries instead of the loader rejecting them.
	Fields map[string]any
}
