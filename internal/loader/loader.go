package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/internal/resolver"
)

// Loader loads parser definitions from manifests. It is safe for concurrent use.
type Loader struct {
	decoder  config.ManifestDecoder
	registry *registry.Registry
}

// New creates a loader that decodes manifests with decoder and binds them
// to constructors from reg.
func New(decoder config.ManifestDecoder, reg *registry.Registry) *Loader {
	return &Loader{decoder: decoder, registry: reg}
}

// Load returns the definition for loc. A manifest already loaded during this
// run is served from the registry.
func (l *Loader) Load(ctx context.Context, loc *resolver.Location) (*registry.Definition, error) {
	manifestPath := loc.Manifest()
	defKey := manifestPath + "#" + loc.TypeName
	if def, ok := l.registry.Definition(defKey); ok {
		return def, nil
	}

	logger := ctxlog.FromContext(ctx).With("parser", loc.TypeName, "manifest", manifestPath, "remote", loc.IsRemote())
	logger.Debug("Loading parser module.")

	fail := func(kind Kind, err error) error {
		logger.Debug("Parser module rejected.", "kind", kind.String(), "error", err)
		return &Error{Kind: kind, TypeName: loc.TypeName, Manifest: manifestPath, Err: err}
	}

	if err := exists(manifestPath); err != nil {
		return nil, fail(KindLoad, err)
	}
	manifest, err := l.decoder.DecodeManifest(ctx, manifestPath)
	if err != nil {
		return nil, fail(KindLoad, err)
	}
	pm, ok := manifest.Parsers[loc.TypeName]
	if !ok {
		return nil, fail(KindLoad, fmt.Errorf("manifest does not define parser '%s'", loc.TypeName))
	}

	contract, err := l.loadContract(ctx, loc, pm)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return nil, fail(le.Kind, le.Err)
		}
		return nil, fail(KindLoad, err)
	}

	if pm.Constructor == "" {
		return nil, fail(KindContract, errors.New("manifest has no lifecycle.on_new constructor"))
	}
	handler, ok := l.registry.Handler(pm.Constructor)
	if !ok {
		return nil, fail(KindLoad, fmt.Errorf("constructor '%s' is not registered", pm.Constructor))
	}
	if err := checkCapabilities(handler, contract); err != nil {
		return nil, fail(KindContract, err)
	}

	def := l.registry.Define(defKey, &registry.Definition{
		TypeName:    pm.Type,
		Description: pm.Description,
		Contract:    contract.Name,
		Constructor: pm.Constructor,
		Manifest:    manifestPath,
		Defaults:    parser.Options(pm.Defaults),
		Handler:     handler,
	})
	logger.Debug("Parser module loaded.", "constructor", def.Constructor, "contract", def.Contract)
	return def, nil
}

// loadContract reads the colocated base manifest and returns the contract
// the parser claims to implement.
func (l *Loader) loadContract(ctx context.Context, loc *resolver.Location, pm *config.ParserManifest) (*config.ContractManifest, error) {
	basePath := loc.BaseManifest()
	if err := exists(basePath); err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return nil, fmt.Errorf("unmet dependency: base contract module %s is missing", basePath)
		}
		return nil, fmt.Errorf("unmet dependency: base contract module: %w", err)
	}
	base, err := l.decoder.DecodeManifest(ctx, basePath)
	if err != nil {
		return nil, fmt.Errorf("unmet dependency: base contract module: %w", err)
	}

	if pm.Implements == "" {
		return nil, &Error{Kind: KindContract, Err: errors.New("manifest does not declare the contract it implements")}
	}
	contract, ok := base.Contracts[pm.Implements]
	if !ok {
		return nil, &Error{Kind: KindContract, Err: fmt.Errorf("contract '%s' is not defined by %s", pm.Implements, basePath)}
	}
	for _, required := range parser.RequiredCapabilities {
		if !slices.Contains(contract.Capabilities, required) {
			return nil, &Error{Kind: KindContract, Err: fmt.Errorf("contract '%s' omits required capability '%s'", contract.Name, required)}
		}
	}
	for _, c := range contract.Capabilities {
		if _, known := parser.CapabilityType(c); !known {
			return nil, fmt.Errorf("contract '%s' lists unknown capability '%s'", contract.Name, c)
		}
	}
	return contract, nil
}

// checkCapabilities verifies the registered Go type implements every
// capability of the contract.
func checkCapabilities(handler *registry.RegisteredParser, contract *config.ContractManifest) error {
	if handler.Type == nil {
		return errors.New("constructor does not declare its type")
	}
	var missing []string
	for _, c := range contract.Capabilities {
		iface, _ := parser.CapabilityType(c)
		if !handler.Type.Implements(iface) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("type %s does not provide capabilities %v of contract '%s'", handler.Type, missing, contract.Name)
	}
	return nil
}

func exists(path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, path)
	}
	return err
}
