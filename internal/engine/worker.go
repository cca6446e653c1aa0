package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/job"
	"github.com/specialistvlad/parsegrid/internal/loader"
	"github.com/specialistvlad/parsegrid/internal/parser"
)

// worker is the processing loop for a single concurrent worker.
func (e *Engine) worker(ctx context.Context, def *job.Definition, report *Report, items <-chan int, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for i := range items {
		d := def.Transformations[i]
		if ctx.Err() != nil {
			e.record(ctx, report, i, d, failed(KindResolution, ctx.Err()))
			continue
		}

		itemCtx, itemLogger := ctxlog.With(ctx, "workerID", workerID, "transformation", d.ID())
		itemLogger.Info("▶️ Starting transformation", "origin", d.Origin, "destiny", d.Destiny)

		start := time.Now()
		out := e.execute(itemCtx, d)
		out.Duration = time.Since(start)

		if out.Succeeded() {
			itemLogger.Info("✅ Transformation succeeded", "duration", out.Duration)
		} else {
			itemLogger.Error("❌ Transformation failed", "kind", out.Kind.String(), "error", out.Message)
		}
		e.record(ctx, report, i, d, out)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// execute runs the resolve, load, construct, check and invoke steps for one
// transformation. It never returns an error: failures become outcomes.
func (e *Engine) execute(ctx context.Context, d *job.Descriptor) Outcome {
	logger := ctxlog.FromContext(ctx)

	loc, err := e.resolver.Resolve(ctx, d.ParserType, d.Options)
	if err != nil {
		return failed(KindResolution, err)
	}
	logger.Debug("Resolved parser module.", "manifest", loc.Manifest(), "remote", loc.IsRemote())

	pdef, err := e.loader.Load(ctx, loc)
	if err != nil {
		var lerr *loader.Error
		if errors.As(err, &lerr) && lerr.Kind == loader.KindContract {
			return failed(KindContract, err)
		}
		return failed(KindLoad, err)
	}

	opts := d.Options.Merge(pdef.Defaults)
	return e.invoke(ctx, d, func() (parser.Parser, error) {
		return pdef.New(job.LocalPath(d.Origin), job.LocalPath(d.Destiny), d.Options)
	}, opts)
}

// invoke constructs the parser and calls the requested operation. Panics in
// parser code are recovered and reported as runtime errors.
func (e *Engine) invoke(ctx context.Context, d *job.Descriptor, construct func() (parser.Parser, error), opts parser.Options) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(KindParserRuntime, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	p, err := construct()
	if err != nil {
		return failed(KindParserRuntime, fmt.Errorf("construct %s: %w", d.ParserType, err))
	}

	if !parser.Supports(p, d.Operation) {
		return failed(KindInvocation, &InvocationError{ParserType: d.ParserType, Operation: d.Operation, Reason: "operation not supported"})
	}

	op, err := operation(p, d)
	if err != nil {
		return failed(KindInvocation, err)
	}

	ctxlog.FromContext(ctx).Debug("Invoking parser operation.", "operation", d.Operation)
	if err := op(ctx, opts); err != nil {
		return failed(KindParserRuntime, err)
	}
	return succeeded()
}

// operation looks up the callable for the descriptor's operation name.
func operation(p parser.Parser, d *job.Descriptor) (parser.Operation, error) {
	if d.Operation == parser.DefaultOperation {
		return func(ctx context.Context, _ parser.Options) error {
			return p.Process(ctx)
		}, nil
	}
	if provider, ok := p.(parser.OperationProvider); ok {
		if op, ok := provider.Operation(d.Operation); ok && op != nil {
			return op, nil
		}
	}
	return nil, &InvocationError{ParserType: d.ParserType, Operation: d.Operation, Reason: "operation declared but not provided"}
}
