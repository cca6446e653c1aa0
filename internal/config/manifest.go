package config

import "context"

// ManifestDecoder decodes a module manifest file into the format-agnostic
// manifest model.
type ManifestDecoder interface {
	DecodeManifest(ctx context.Context, path string) (*Manifest, error)
}

// Manifest is the content of one module manifest file.
type Manifest struct {
	Parsers   map[string]*ParserManifest
	Contracts map[string]*ContractManifest
}

// ParserManifest binds a parser type name to a compiled constructor.
type ParserManifest struct {
	Type        string
	Description string
	// Implements names the base contract the parser claims to satisfy.
	Implements string
	// Constructor is the registered Go constructor name (lifecycle.on_new).
	Constructor string
	Defaults    map[string]any
}

// ContractManifest lists the capabilities a parser type must provide.
type ContractManifest struct {
	Name         string
	Capabilities []string
}
