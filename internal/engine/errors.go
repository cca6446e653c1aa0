package engine

import "fmt"

// InvocationError means the requested operation could not be dispatched to
// the parser instance.
type InvocationError struct {
	ParserType string
	Operation  string
	Reason     string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %s.%s", e.Reason, e.ParserType, e.Operation)
}

// PanicError wraps a value recovered from a panicking parser.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parser panicked: %v", e.Value)
}
