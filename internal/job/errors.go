package job

import (
	"fmt"
	"strings"
)

// FieldError is a single schema violation.
type FieldError struct {
	Index  int
	Source string
	Field  string
	Reason string
}

func (e FieldError) String() string {
	loc := fmt.Sprintf("transformation #%d", e.Index)
	if e.Source != "" {
		loc += " (" + e.Source + ")"
	}
	return fmt.Sprintf("%s: field '%s' %s", loc, e.Field, e.Reason)
}

// SchemaError lists every violation found in a job definition.
type SchemaError struct {
	Violations []FieldError
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("job definition is invalid (%d violations):\n- %s", len(e.Violations), strings.Join(lines, "\n- "))
}
