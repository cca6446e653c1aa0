package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
)

// JobLoader is the HCL implementation of the config.Loader interface. The
// parser type is the block label; a `parser` attribute is accepted in its
// place.
//
//	transformation "ZipFileParser" {
//	  operation = "unzip"
//	  origin    = "data/a.zip"
//	  destiny   = "out/"
//	  options   = { sourceBucket = "scripts", sourcePath = "parsers/" }
//	}
type JobLoader struct{}

// NewJobLoader creates a new HCL job loader.
func NewJobLoader() *JobLoader {
	return &JobLoader{}
}

const transformationBlock = "transformation"

// attrFields maps HCL attribute names onto raw transformation fields. Every
// attribute is optional at this level; the job validator enforces presence.
var attrFields = map[string]string{
	"parser":    config.FieldParserType,
	"operation": config.FieldOperation,
	"origin":    config.FieldOrigin,
	"destiny":   config.FieldDestiny,
	"options":   config.FieldOptions,
}

var transformationSchema = func() *hcl.BodySchema {
	s := &hcl.BodySchema{}
	for name := range attrFields {
		s.Attributes = append(s.Attributes, hcl.AttributeSchema{Name: name})
	}
	return s
}()

// Load parses each file and returns its transformation blocks in order.
func (l *JobLoader) Load(ctx context.Context, files ...string) (*config.Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL job loader started.", "file_count", len(files))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	job := &config.Job{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		blocks, diags := transformationBlocks(hclFile)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range blocks {
			raw, diags := decodeTransformation(block, evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode transformation in %s: %w", file, diags)
			}
			job.Transformations = append(job.Transformations, raw)
		}
		logger.Debug("Loaded transformations from HCL file.", "file", file, "blocks", len(blocks))
	}

	return job, nil
}

func decodeTransformation(block *hcl.Block, evalCtx *hcl.EvalContext) (*config.RawTransformation, hcl.Diagnostics) {
	content, diags := block.Body.Content(transformationSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	raw := &config.RawTransformation{
		Source: fmt.Sprintf("%s:%d,%d", block.DefRange.Filename, block.DefRange.Start.Line, block.DefRange.Start.Column),
		Fields: make(map[string]any, len(content.Attributes)),
	}
	for name, attr := range content.Attributes {
		v, valDiags := evalNative(attr.Expr, evalCtx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		raw.Fields[attrFields[name]] = v
	}

	if len(block.Labels) == 1 {
		if attr, ok := content.Attributes["parser"]; ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate parser type",
				Detail:   fmt.Sprintf("The parser type is already given by the block label %q.", block.Labels[0]),
				Subject:  attr.NameRange.Ptr(),
			})
			return raw, diags
		}
		raw.Fields[config.FieldParserType] = block.Labels[0]
	}
	return raw, diags
}

// transformationBlocks returns the top-level transformation blocks of a file.
// hcl.BodySchema fixes the label count, so the syntax tree is walked directly
// to allow zero or one label.
func transformationBlocks(file *hcl.File) ([]*hcl.Block, hcl.Diagnostics) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported job file syntax",
			Detail:   "Job files must use native HCL syntax.",
		}}
	}

	var diags hcl.Diagnostics
	for name, attr := range body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported argument",
			Detail:   fmt.Sprintf("An argument named %q is not expected here.", name),
			Subject:  attr.NameRange.Ptr(),
		})
	}

	blocks := make([]*hcl.Block, 0, len(body.Blocks))
	for _, b := range body.Blocks {
		switch {
		case b.Type != transformationBlock:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected here.", b.Type),
				Subject:  b.TypeRange.Ptr(),
			})
		case len(b.Labels) > 1:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Extraneous label for transformation",
				Detail:   "A transformation block takes at most one label, the parser type.",
				Subject:  b.LabelRanges[1].Ptr(),
			})
		default:
			blocks = append(blocks, b.AsHCLBlock())
		}
	}
	return blocks, diags
}
