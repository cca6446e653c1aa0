package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
)

// ManifestDecoder is the HCL implementation of config.ManifestDecoder.
type ManifestDecoder struct{}

// NewManifestDecoder creates a new HCL manifest decoder.
func NewManifestDecoder() *ManifestDecoder {
	return &ManifestDecoder{}
}

// manifestRoot is used to decode all top-level blocks of a manifest file.
type manifestRoot struct {
	Parsers   []*parserBlock   `hcl:"parser,block"`
	Contracts []*contractBlock `hcl:"contract,block"`
}

type parserBlock struct {
	Type        string          `hcl:"type,label"`
	Description string          `hcl:"description,optional"`
	Implements  string          `hcl:"implements,optional"`
	Lifecycle   *lifecycleBlock `hcl:"lifecycle,block"`
	Defaults    hcl.Expression  `hcl:"defaults,optional"`
}

type lifecycleBlock struct {
	OnNew string `hcl:"on_new,optional"`
}

type contractBlock struct {
	Name         string   `hcl:"name,label"`
	Capabilities []string `hcl:"capabilities"`
}

// DecodeManifest parses a manifest file. It does not check that the file
// exists; callers do that to tell a missing module from a broken one.
func (d *ManifestDecoder) DecodeManifest(ctx context.Context, path string) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	hclFile, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	var root manifestRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}

	m := &config.Manifest{
		Parsers:   make(map[string]*config.ParserManifest, len(root.Parsers)),
		Contracts: make(map[string]*config.ContractManifest, len(root.Contracts)),
	}
	for _, p := range root.Parsers {
		pm, err := translateParser(p)
		if err != nil {
			return nil, fmt.Errorf("in manifest %s, parser '%s': %w", path, p.Type, err)
		}
		if _, dup := m.Parsers[pm.Type]; dup {
			return nil, fmt.Errorf("in manifest %s: parser '%s' declared more than once", path, pm.Type)
		}
		m.Parsers[pm.Type] = pm
	}
	for _, c := range root.Contracts {
		m.Contracts[c.Name] = &config.ContractManifest{Name: c.Name, Capabilities: c.Capabilities}
	}

	logger.Debug("Manifest decoded.", "path", path, "parsers", len(m.Parsers), "contracts", len(m.Contracts))
	return m, nil
}

func translateParser(p *parserBlock) (*config.ParserManifest, error) {
	pm := &config.ParserManifest{
		Type:        p.Type,
		Description: p.Description,
		Implements:  p.Implements,
	}
	if p.Lifecycle != nil {
		pm.Constructor = p.Lifecycle.OnNew
	}

	if isExprDefined(p.Defaults) {
		v, diags := evalNative(p.Defaults, nil)
		if diags.HasErrors() {
			return nil, diags
		}
		defaults, ok := v.(map[string]any)
		if !ok && v != nil {
			return nil, fmt.Errorf("defaults must be an object, got %T", v)
		}
		pm.Defaults = defaults
	}
	return pm, nil
}

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional attributes with zero-width
// expressions, so a nil check alone is insufficient.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}
