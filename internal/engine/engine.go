package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/job"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/internal/resolver"
)

// ModuleResolver locates the module for a parser type.
type ModuleResolver interface {
	Resolve(ctx context.Context, typeName string, opts parser.Options) (*resolver.Location, error)
}

// ModuleLoader turns a resolved location into a constructible definition.
type ModuleLoader interface {
	Load(ctx context.Context, loc *resolver.Location) (*registry.Definition, error)
}

// Config tunes an Engine.
type Config struct {
	// Workers bounds the number of transformations run at once. Values below
	// one run the job sequentially.
	Workers  int
	Observer Observer
}

// Engine executes jobs.
type Engine struct {
	resolver ModuleResolver
	loader   ModuleLoader
	workers  int
	observer Observer
}

// New creates an engine.
func New(res ModuleResolver, ld ModuleLoader, cfg Config) *Engine {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	observer := cfg.Observer
	if observer == nil {
		observer = Observers(nil)
	}
	return &Engine{resolver: res, loader: ld, workers: workers, observer: observer}
}

// Run validates the whole job and executes it. The returned error is non-nil
// only when the job definition is invalid, in which case nothing is resolved,
// loaded or invoked.
func (e *Engine) Run(ctx context.Context, raws []*config.RawTransformation) (*Report, error) {
	def, err := job.Validate(raws)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Job definition rejected.", "error", err)
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]Result, def.Len()),
	}
	ctx, logger := ctxlog.With(ctx, "run_id", report.RunID)
	logger.Info("🚀 Starting job", "transformations", def.Len(), "workers", e.workers)
	e.observer.JobStarted(ctx, report.RunID, def.Len())

	items := make(chan int)
	var wg sync.WaitGroup
	for i := 1; i <= e.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			e.worker(ctx, def, report, items, workerID)
		}(i)
	}

	dispatched := 0
dispatch:
	for i := range def.Transformations {
		select {
		case items <- i:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(items)
	wg.Wait()

	for i := dispatched; i < def.Len(); i++ {
		e.record(ctx, report, i, def.Transformations[i], failed(KindResolution, ctx.Err()))
	}

	report.Duration = time.Since(report.StartedAt)
	report.tally()
	logger.Info("🏁 Job finished", "succeeded", report.Succeeded, "failed", report.Failed, "duration", report.Duration)
	e.observer.JobFinished(ctx, report)
	return report, nil
}

// record stores the outcome at its input index and notifies the observer.
// Indices are disjoint across workers.
func (e *Engine) record(ctx context.Context, report *Report, i int, d *job.Descriptor, out Outcome) {
	res := Result{Descriptor: d, Outcome: out}
	report.Results[i] = res
	e.observer.ResultRecorded(ctx, report.RunID, res)
}
