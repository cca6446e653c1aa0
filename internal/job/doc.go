// Package job holds the validated transformation model and the validator
// that turns raw job entries into it.
//
// Validation always covers the entire job definition and reports every
// violation at once, so a malformed definition fails before any module is
// fetched or loaded.
package job
