package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/parser"
)

var parserType = reflect.TypeOf((*parser.Parser)(nil)).Elem()

// ValidateRegistry checks every registered constructor for completeness and
// reports all problems at once. A failure is a programming error in a Go
// module, not a job error.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.HandlerNames() {
		h, _ := r.Handler(name)
		if h.New == nil {
			errs = append(errs, fmt.Sprintf("constructor '%s': New function is nil", name))
		}
		if h.Type == nil {
			errs = append(errs, fmt.Sprintf("constructor '%s': Type is nil", name))
			continue
		}
		if !h.Type.Implements(parserType) {
			// Not fatal here: manifests binding to it fail to load with a
			// contract error.
			logger.Warn("Registered constructor does not implement the full parser contract.", "constructor", name, "type", h.Type.String())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
