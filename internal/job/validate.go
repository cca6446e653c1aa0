package job

import (
	"regexp"

	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/parser"
)

// typeNamePattern keeps parser type names usable as module file names.
var typeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var requiredFields = []string{
	config.FieldOrigin,
	config.FieldDestiny,
	config.FieldOperation,
	config.FieldParserType,
}

// Validate checks every raw entry against the transformation schema. It
// performs no I/O. On any violation it returns a *SchemaError naming all of
// them and no definition.
func Validate(raws []*config.RawTransformation) (*Definition, error) {
	var violations []FieldError
	def := &Definition{Transformations: make([]*Descriptor, 0, len(raws))}

	for i, raw := range raws {
		if raw == nil {
			violations = append(violations, FieldError{Index: i, Field: "entry", Reason: "must not be null"})
			continue
		}
		fail := func(field, reason string) {
			violations = append(violations, FieldError{Index: i, Source: raw.Source, Field: field, Reason: reason})
		}

		strs := make(map[string]string, len(requiredFields))
		for _, field := range requiredFields {
			v, present := raw.Fields[field]
			if !present || v == nil {
				fail(field, "is required")
				continue
			}
			s, ok := v.(string)
			if !ok {
				fail(field, "must be a string")
				continue
			}
			if s == "" {
				fail(field, "must not be empty")
				continue
			}
			if field == config.FieldParserType && !typeNamePattern.MatchString(s) {
				fail(field, "must be an identifier")
				continue
			}
			strs[field] = s
		}

		opts, reasons := validateOptions(raw.Fields[config.FieldOptions])
		for _, r := range reasons {
			fail(r.field, r.reason)
		}

		def.Transformations = append(def.Transformations, &Descriptor{
			Index:      i,
			Source:     raw.Source,
			Origin:     strs[config.FieldOrigin],
			Destiny:    strs[config.FieldDestiny],
			Operation:  strs[config.FieldOperation],
			ParserType: strs[config.FieldParserType],
			Options:    opts,
		})
	}

	if len(violations) > 0 {
		return nil, &SchemaError{Violations: violations}
	}
	return def, nil
}

type violation struct {
	field  string
	reason string
}

func validateOptions(v any) (parser.Options, []violation) {
	if v == nil {
		return parser.Options{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, []violation{{config.FieldOptions, "must be a mapping"}}
	}
	opts, err := parser.FromMap(m)
	if err != nil {
		return nil, []violation{{config.FieldOptions, err.Error()}}
	}

	var out []violation
	hinted := 0
	for _, key := range []string{parser.OptionSourceBucket, parser.OptionSourcePath} {
		raw, present := opts[key]
		if !present {
			continue
		}
		hinted++
		if s, ok := raw.(string); !ok || s == "" {
			out = append(out, violation{config.FieldOptions + "." + key, "must be a non-empty string"})
		}
	}
	if hinted == 1 {
		out = append(out, violation{config.FieldOptions, "sourceBucket and sourcePath must be given together"})
	}
	return opts, out
}
