package loader

import (
	"errors"
	"fmt"
)

// ErrModuleNotFound is returned when no manifest exists at the resolved
// location. It is reported as a load error.
var ErrModuleNotFound = errors.New("module not found")

// Kind separates load failures from contract violations.
type Kind int

const (
	// KindLoad means the module is absent, malformed, or has unmet dependencies.
	KindLoad Kind = iota
	// KindContract means the module loaded but does not satisfy the base contract.
	KindContract
)

func (k Kind) String() string {
	if k == KindContract {
		return "contract"
	}
	return "load"
}

// Error is a failure to load a parser module.
type Error struct {
	Kind     Kind
	TypeName string
	Manifest string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error for parser '%s' (%s): %v", e.Kind, e.TypeName, e.Manifest, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
