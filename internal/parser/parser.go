package parser

import (
	"context"
	"reflect"
)

// DefaultOperation is the name of the operation every parser exposes
// implicitly, whether or not AvailableOperations lists it.
const DefaultOperation = "process"

// Processor is the default, no-argument operation of a parser.
type Processor interface {
	Process(ctx context.Context) error
}

// OperationLister declares the named operations a parser instance supports.
// It is evaluated per instance and may depend on the instance's options.
type OperationLister interface {
	AvailableOperations() []string
}

// Parser is the full capability contract.
type Parser interface {
	Processor
	OperationLister
}

// Operation is a named parser operation. Its only input is the options bag;
// its only output is an error. Results are side effects written to destiny.
type Operation func(ctx context.Context, opts Options) error

// OperationProvider is implemented by parsers that expose named operations
// beyond Process.
type OperationProvider interface {
	Operation(name string) (Operation, bool)
}

// Capability names used by contract manifests.
const (
	CapabilityProcess             = "process"
	CapabilityAvailableOperations = "available_operations"
	CapabilityNamedOperations     = "named_operations"
)

// capabilityTypes maps a contract capability name to the Go interface that
// provides it.
var capabilityTypes = map[string]reflect.Type{
	CapabilityProcess:             reflect.TypeOf((*Processor)(nil)).Elem(),
	CapabilityAvailableOperations: reflect.TypeOf((*OperationLister)(nil)).Elem(),
	CapabilityNamedOperations:     reflect.TypeOf((*OperationProvider)(nil)).Elem(),
}

// CapabilityType returns the Go interface backing a capability name.
func CapabilityType(name string) (reflect.Type, bool) {
	t, ok := capabilityTypes[name]
	return t, ok
}

// RequiredCapabilities are the capabilities every contract must include.
var RequiredCapabilities = []string{CapabilityProcess, CapabilityAvailableOperations}

// Supports reports whether p accepts the operation name: either the implicit
// default or a name listed by AvailableOperations.
func Supports(p OperationLister, name string) bool {
	if name == DefaultOperation {
		return true
	}
	for _, op := range p.AvailableOperations() {
		if op == name {
			return true
		}
	}
	return false
}
