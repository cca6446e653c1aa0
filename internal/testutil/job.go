package testutil

import (
	"fmt"

	"github.com/specialistvlad/parsegrid/internal/config"
)

// Raw builds a raw transformation entry. opts is omitted when nil.
func Raw(origin, destiny, operation, parserType string, opts map[string]any) *config.RawTransformation {
	fields := map[string]any{
		config.FieldOrigin:     origin,
		config.FieldDestiny:    destiny,
		config.FieldOperation:  operation,
		config.FieldParserType: parserType,
	}
	if opts != nil {
		fields[config.FieldOptions] = opts
	}
	return &config.RawTransformation{Source: fmt.Sprintf("test:%s.%s", parserType, operation), Fields: fields}
}
