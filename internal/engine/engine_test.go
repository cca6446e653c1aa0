package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/specialistvlad/parsegrid/internal/engine"
	"github.com/specialistvlad/parsegrid/internal/hcl_adapter"
	"github.com/specialistvlad/parsegrid/internal/job"
	"github.com/specialistvlad/parsegrid/internal/loader"
	"github.com/specialistvlad/parsegrid/internal/objectstore"
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/internal/resolver"
	"github.com/specialistvlad/parsegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader records how often Load is reached.
type countingLoader struct {
	engine.ModuleLoader
	calls atomic.Int64
}

func (c *countingLoader) Load(ctx context.Context, loc *resolver.Location) (*registry.Definition, error) {
	c.calls.Add(1)
	return c.ModuleLoader.Load(ctx, loc)
}

type harness struct {
	engine *engine.Engine
	store  *testutil.MemoryStore
	loader *countingLoader
	log    *testutil.CallLog
	ctx    context.Context
	output *testutil.SafeBuffer
}

func newHarness(t *testing.T, workers int, observer engine.Observer) *harness {
	t.Helper()

	modules := t.TempDir()
	testutil.WriteFiles(t, modules, map[string]string{
		"base_parser.hcl":     testutil.BaseManifest,
		"zip_file_parser.hcl": testutil.ParserManifest("ZipFileParser", "NewStubParser"),
		"half_parser.hcl":     testutil.ParserManifest("HalfParser", "NewHalfParser"),
	})

	log := &testutil.CallLog{}
	reg := registry.New(&testutil.StubModule{Log: log})
	store := testutil.NewMemoryStore()
	ld := &countingLoader{ModuleLoader: loader.New(hcl_adapter.NewManifestDecoder(), reg)}
	res := resolver.New(modules, store, t.TempDir())
	ctx, output := testutil.LoggedContext()

	return &harness{
		engine: engine.New(res, ld, engine.Config{Workers: workers, Observer: observer}),
		store:  store,
		loader: ld,
		log:    log,
		ctx:    ctx,
		output: output,
	}
}

func kinds(report *engine.Report) []engine.Kind {
	out := make([]engine.Kind, len(report.Results))
	for i, r := range report.Results {
		out[i] = r.Outcome.Kind
	}
	return out
}

func TestRun_LocalParserSucceeds(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, 1, nil)
	raws := []*config.RawTransformation{testutil.Raw("a.zip", "out/", "unzip", "ZipFileParser", nil)}

	// --- Act ---
	report, err := h.engine.Run(h.ctx, raws)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, engine.KindSucceeded, report.Results[0].Outcome.Kind)
	assert.Equal(t, "Succeeded", report.Results[0].Outcome.String())
	assert.Equal(t, 1, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"unzip a.zip -> out/"}, h.log.Calls())
	assert.Contains(t, h.output.String(), "Transformation succeeded")
}

func TestRun_DefaultOperation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1, nil)
	report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
		testutil.Raw("a.zip", "out/", "process", "ZipFileParser", nil),
	})

	require.NoError(t, err)
	assert.Equal(t, []engine.Kind{engine.KindSucceeded}, kinds(report))
	assert.Equal(t, []string{"process a.zip"}, h.log.Calls())
}

func TestRun_S3LocatorsMappedToLocalMirror(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1, nil)
	report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
		testutil.Raw("s3://inbox/a.zip", "s3://outbox/a/", "unzip", "ZipFileParser", nil),
	})

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, []string{"unzip s3/inbox/a.zip -> s3/outbox/a/"}, h.log.Calls())
}

func TestRun_MissingParserIsLoadError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1, nil)
	report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
		testutil.Raw("a.zip", "out/", "unzip", "MissingParser", nil),
	})

	require.NoError(t, err)
	out := report.Results[0].Outcome
	assert.Equal(t, engine.KindLoad, out.Kind)
	assert.Contains(t, out.Message, "module not found")
	assert.ErrorIs(t, out.Err, loader.ErrModuleNotFound)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.OK())
}

func TestRun_ContractViolation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1, nil)
	report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
		testutil.Raw("a", "b", "process", "HalfParser", nil),
	})

	require.NoError(t, err)
	assert.Equal(t, []engine.Kind{engine.KindContract}, kinds(report))
}

func TestRun_RemoteNotFoundSkipsLoad(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, 1, nil)
	opts := map[string]any{"sourceBucket": "nowhere", "sourcePath": "parsers"}

	// --- Act ---
	report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
		testutil.Raw("a.zip", "out/", "unzip", "ZipFileParser", opts),
	})

	// --- Assert ---
	require.NoError(t, err)
	out := report.Results[0].Outcome
	assert.Equal(t, engine.KindResolution, out.Kind)
	assert.ErrorIs(t, out.Err, objectstore.ErrNotFound)
	assert.Zero(t, h.loader.calls.Load(), "no load is attempted after a resolution error")
	assert.Empty(t, h.log.Calls())
}

func TestRun_SharedRemoteKeyFetchedOnce(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, 4, nil)
	h.store.Delay = 10 * time.Millisecond
	h.store.Put("team", "parsers/zip_file_parser.hcl", testutil.ParserManifest("ZipFileParser", "NewStubParser"))
	h.store.Put("team", "parsers/base_parser.hcl", testutil.BaseManifest)
	opts := map[string]any{"sourceBucket": "team", "sourcePath": "parsers"}

	var raws []*config.RawTransformation
	for i := 0; i < 6; i++ {
		raws = append(raws, testutil.Raw(fmt.Sprintf("%d.zip", i), "out/", "unzip", "ZipFileParser", opts))
	}

	// --- Act ---
	report, err := h.engine.Run(h.ctx, raws)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded)
	assert.Equal(t, 1, h.store.Calls("team", "parsers/zip_file_parser.hcl"))
	assert.Equal(t, 1, h.store.Calls("team", "parsers/base_parser.hcl"))
	assert.Len(t, h.log.Calls(), 6)
}

func TestRun_UnsupportedOperationNeverInvoked(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		operation string
		reason    string
	}{
		{name: "not listed", operation: "xml_to_csv", reason: "operation not supported"},
		{name: "listed but not provided", operation: "ghost", reason: "operation declared but not provided"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, 1, nil)
			report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
				testutil.Raw("a.zip", "out/", tc.operation, "ZipFileParser", nil),
			})

			require.NoError(t, err)
			out := report.Results[0].Outcome
			assert.Equal(t, engine.KindInvocation, out.Kind)
			var ierr *engine.InvocationError
			require.True(t, errors.As(out.Err, &ierr))
			assert.Equal(t, tc.reason, ierr.Reason)
			assert.Empty(t, h.log.Calls())
		})
	}
}

func TestRun_RuntimeFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, 1, nil)
	raws := []*config.RawTransformation{
		testutil.Raw("1.zip", "out/", "explode", "ZipFileParser", nil),
		testutil.Raw("2.zip", "out/", "unzip", "ZipFileParser", nil),
		testutil.Raw("3.zip", "out/", "panic", "ZipFileParser", nil),
		testutil.Raw("4.zip", "out/", "unzip", "ZipFileParser", nil),
	}

	// --- Act ---
	report, err := h.engine.Run(h.ctx, raws)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []engine.Kind{
		engine.KindParserRuntime,
		engine.KindSucceeded,
		engine.KindParserRuntime,
		engine.KindSucceeded,
	}, kinds(report))
	assert.ErrorIs(t, report.Results[0].Outcome.Err, testutil.ErrBoom)
	assert.Equal(t, "boom", report.Results[0].Outcome.Message)

	var perr *engine.PanicError
	require.True(t, errors.As(report.Results[2].Outcome.Err, &perr))
	assert.Equal(t, "stub parser panicked", perr.Value)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
}

func TestRun_SchemaErrorHasNoSideEffects(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, 2, nil)
	remote := map[string]any{"sourceBucket": "team", "sourcePath": "parsers"}
	raws := []*config.RawTransformation{
		testutil.Raw("a.zip", "out/", "unzip", "ZipFileParser", remote),
		{Source: "broken", Fields: map[string]any{config.FieldOrigin: "x"}},
		testutil.Raw("b.zip", "", "unzip", "ZipFileParser", nil),
	}

	// --- Act ---
	report, err := h.engine.Run(h.ctx, raws)

	// --- Assert ---
	require.Error(t, err)
	assert.Nil(t, report)
	var serr *job.SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Len(t, serr.Violations, 4)
	assert.Zero(t, h.store.TotalCalls())
	assert.Zero(t, h.loader.calls.Load())
	assert.Empty(t, h.log.Calls())
}

func TestRun_OrderPreservedUnderConcurrency(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 8, nil)
	var raws []*config.RawTransformation
	for i := 0; i < 40; i++ {
		op := "unzip"
		if i%3 == 0 {
			op = "explode"
		}
		raws = append(raws, testutil.Raw(fmt.Sprintf("%d.zip", i), "out/", op, "ZipFileParser", nil))
	}

	report, err := h.engine.Run(h.ctx, raws)

	require.NoError(t, err)
	require.Len(t, report.Results, len(raws))
	for i, res := range report.Results {
		assert.Equal(t, i, res.Descriptor.Index)
		assert.Equal(t, fmt.Sprintf("%d.zip", i), res.Descriptor.Origin)
		if i%3 == 0 {
			assert.Equal(t, engine.KindParserRuntime, res.Outcome.Kind)
		} else {
			assert.Equal(t, engine.KindSucceeded, res.Outcome.Kind)
		}
	}
	assert.Equal(t, report.Succeeded+report.Failed, len(raws))
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, nil)
	ctx, cancel := context.WithCancel(h.ctx)
	cancel()

	report, err := h.engine.Run(ctx, []*config.RawTransformation{
		testutil.Raw("1.zip", "out/", "unzip", "ZipFileParser", nil),
		testutil.Raw("2.zip", "out/", "unzip", "ZipFileParser", nil),
	})

	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		require.NotNil(t, res.Descriptor)
		assert.Equal(t, engine.KindResolution, res.Outcome.Kind)
		assert.ErrorIs(t, res.Outcome.Err, context.Canceled)
	}
	assert.Empty(t, h.log.Calls())
}

type recorder struct {
	mu       sync.Mutex
	started  int
	results  int
	finished *engine.Report
}

func (r *recorder) JobStarted(context.Context, string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recorder) ResultRecorded(context.Context, string, engine.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results++
}

func (r *recorder) JobFinished(_ context.Context, report *engine.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = report
}

func TestRun_NotifiesObservers(t *testing.T) {
	t.Parallel()

	a, b := &recorder{}, &recorder{}
	h := newHarness(t, 3, engine.Observers{a, b})

	report, err := h.engine.Run(h.ctx, []*config.RawTransformation{
		testutil.Raw("1.zip", "out/", "unzip", "ZipFileParser", nil),
		testutil.Raw("2.zip", "out/", "explode", "ZipFileParser", nil),
		testutil.Raw("3.zip", "out/", "unzip", "MissingParser", nil),
	})

	require.NoError(t, err)
	for _, r := range []*recorder{a, b} {
		assert.Equal(t, 1, r.started)
		assert.Equal(t, 3, r.results)
		assert.Same(t, report, r.finished)
	}
}
