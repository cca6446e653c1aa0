package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/hcl_adapter"
	"github.com/specialistvlad/parsegrid/internal/objectstore"
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/internal/yaml_adapter"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	jobs       config.Loader
	manifests  config.ManifestDecoder
	progress   *progress
	httpServer *http.Server
	store      objectstore.Store
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry. When
// no modules are given the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "constructors", reg.HandlerNames())

	// A broken registration is a programmer error, so we panic.
	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	yamlLoader := yaml_adapter.NewLoader()
	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		jobs: config.NewComposite(map[string]config.Loader{
			".hcl":  hcl_adapter.NewJobLoader(),
			".yaml": yamlLoader,
			".yml":  yamlLoader,
			".json": yamlLoader,
		}),
		manifests: hcl_adapter.NewManifestDecoder(),
		progress:  &progress{},
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// UseStore overrides the store selected by the configuration. This is
// primarily for testing.
func (a *App) UseStore(store objectstore.Store) {
	a.store = store
}
