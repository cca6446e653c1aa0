package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/engine"
	"github.com/specialistvlad/parsegrid/internal/loader"
	"github.com/specialistvlad/parsegrid/internal/notify"
	"github.com/specialistvlad/parsegrid/internal/resolver"
)

// Run loads the job definition and executes it. The report is returned even
// when transformations failed; the error is reserved for failures that
// prevent the job from running at all, including an invalid job definition.
func (a *App) Run(ctx context.Context) (*engine.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.startHealthcheckServer()
	defer a.closeHealthcheckServer()

	jobDef, err := a.jobs.Load(ctx, a.config.JobPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load job definition: %w", err)
	}
	a.logger.Info("Job definition loaded.", "path", a.config.JobPath, "transformations", len(jobDef.Transformations))

	store, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(a.config.StagingDir, "parsegrid-modules-")
	if err != nil {
		return nil, fmt.Errorf("failed to create module staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			a.logger.Warn("Failed to remove module staging directory.", "path", staging, "error", err)
		}
	}()

	observers := engine.Observers{a.progress}
	if a.config.NotifyURL != "" {
		n, err := notify.Dial(ctx, notify.Config{URL: a.config.NotifyURL})
		if err != nil {
			a.logger.Warn("Notify server unavailable, continuing without progress events.", "error", err)
		} else {
			defer n.Close()
			observers = append(observers, n)
		}
	}

	eng := engine.New(
		resolver.New(a.config.ModulesPath, store, staging),
		loader.New(a.manifests, a.registry),
		engine.Config{Workers: a.config.Workers, Observer: observers},
	)
	report, err := eng.Run(ctx, jobDef.Transformations)
	if err != nil {
		return nil, err
	}

	if err := writeSummary(a.outW, report); err != nil {
		a.logger.Warn("Failed to write job summary.", "error", err)
	}
	a.logger.Debug("App.Run method finished.")
	return report, nil
}
