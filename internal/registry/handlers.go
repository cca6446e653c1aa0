package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/specialistvlad/parsegrid/internal/parser"
)

// Factory builds a parser instance for one transformation.
type Factory func(origin, destiny string, opts parser.Options) (any, error)

// RegisteredParser holds the compiled Go parts of a parser implementation.
type RegisteredParser struct {
	// Type is the concrete type New returns. The loader checks it against
	// the contract capabilities before any instance is built.
	Type reflect.Type
	New  Factory
}

// RegisterParser registers a Go constructor under the name manifests refer to.
func (r *Registry) RegisterParser(name string, handler *RegisteredParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("parser constructor with name '%s' already registered", name))
	}
	slog.Debug("Registering parser constructor.", "name", name, "type", typeName(handler.Type))
	r.handlers[name] = handler
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Definition is a parser type bound by a manifest to a registered constructor.
type Definition struct {
	TypeName    string
	Description string
	Contract    string
	Constructor string
	Manifest    string
	Defaults    parser.Options
	Handler     *RegisteredParser
}

// New builds a fresh parser instance. Manifest defaults are applied beneath
// the transformation options.
func (d *Definition) New(origin, destiny string, opts parser.Options) (parser.Parser, error) {
	v, err := d.Handler.New(origin, destiny, opts.Merge(d.Defaults))
	if err != nil {
		return nil, err
	}
	p, ok := v.(parser.Parser)
	if !ok {
		return nil, fmt.Errorf("constructor '%s' returned %T, which does not implement the parser contract", d.Constructor, v)
	}
	return p, nil
}
