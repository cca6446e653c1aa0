// Package yaml_adapter implements config.Loader for YAML job definitions.
// Since YAML is a superset of JSON, the same loader reads .json job files,
// including the legacy job_definition.json layout:
//
//	{"transformations": [{"object": {"origin": "...", "destiny": "...",
//	  "parser": "unzip", "classname": "ZipFileParser"}, "kwargs": {...}}]}
package yaml_adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML job loader.
func NewLoader() *Loader {
	return &Loader{}
}

type document struct {
	Transformations []yaml.Node `yaml:"transformations"`
}

// legacyKeys maps option keys of the legacy layout to their current names.
var legacyKeys = map[string]string{
	"scripts_bucket": parser.OptionSourceBucket,
	"scripts_path":   parser.OptionSourcePath,
}

// Load reads every file and returns its transformation entries in order.
func (l *Loader) Load(ctx context.Context, files ...string) (*config.Job, error) {
	logger := ctxlog.FromContext(ctx)
	job := &config.Job{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read job file %s: %w", file, err)
		}

		nodes, err := entryNodes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse job file %s: %w", file, err)
		}

		for _, node := range nodes {
			var fields map[string]any
			if err := node.Decode(&fields); err != nil {
				return nil, fmt.Errorf("failed to decode transformation at %s:%d: %w", file, node.Line, err)
			}
			job.Transformations = append(job.Transformations, &config.RawTransformation{
				Source: fmt.Sprintf("%s:%d,%d", file, node.Line, node.Column),
				Fields: normalize(fields),
			})
		}
		logger.Debug("Loaded transformations from YAML file.", "file", file, "entries", len(nodes))
	}

	return job, nil
}

// entryNodes accepts either a document with a `transformations` list or a
// bare list of entries.
func entryNodes(data []byte) ([]yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	top := root.Content[0]
	switch top.Kind {
	case yaml.SequenceNode:
		nodes := make([]yaml.Node, len(top.Content))
		for i, n := range top.Content {
			nodes[i] = *n
		}
		return nodes, nil
	case yaml.MappingNode:
		var doc document
		if err := top.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Transformations, nil
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list of transformations", top.Line)
	}
}

// normalize rewrites a legacy entry into the current field names. Entries
// already in the current layout are returned unchanged.
func normalize(fields map[string]any) map[string]any {
	obj, ok := fields["object"].(map[string]any)
	if !ok {
		return fields
	}

	out := make(map[string]any, 5)
	for k, v := range obj {
		switch k {
		case "parser":
			out[config.FieldOperation] = v
		case "classname":
			out[config.FieldParserType] = v
		default:
			out[k] = v
		}
	}

	if kwargs, ok := fields["kwargs"].(map[string]any); ok {
		opts := make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			if renamed, ok := legacyKeys[k]; ok {
				k = renamed
			}
			opts[k] = v
		}
		out[config.FieldOptions] = opts
	} else if kw, present := fields["kwargs"]; present {
		out[config.FieldOptions] = kw
	}
	return out
}
