// Package engine runs a job: it validates every transformation up front, then
// resolves, loads, constructs and invokes a parser for each one on a bounded
// worker pool.
//
// Only an invalid job definition makes Run return an error. Every other
// failure is contained to its transformation and recorded as an Outcome in
// the Report, which keeps one Result per transformation in input order.
package engine
