package integration_tests

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/parsegrid/internal/engine"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// barrierModule's parsers only return once `want` of them run at the same time.
type barrierModule struct {
	want    int
	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func newBarrierModule(want int) *barrierModule {
	return &barrierModule{want: want, release: make(chan struct{})}
}

func (m *barrierModule) arrive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arrived++
	if m.arrived == m.want {
		close(m.release)
	}
}

type barrierParser struct {
	m *barrierModule
}

func (p *barrierParser) AvailableOperations() []string { return nil }

func (p *barrierParser) Process(ctx context.Context) error {
	p.m.arrive()
	select {
	case <-p.m.release:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("barrier of %d concurrent parsers not reached", p.m.want)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *barrierModule) Register(r *registry.Registry) {
	r.RegisterParser("NewBarrierParser", &registry.RegisteredParser{
		Type: reflect.TypeOf(&barrierParser{}),
		New: func(string, string, parser.Options) (any, error) {
			return &barrierParser{m: m}, nil
		},
	})
}

func barrierJob(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `
transformation {
  parser    = "BarrierParser"
  operation = "process"
  origin    = "in-%d"
  destiny   = "out-%d"
}
`, i, i)
	}
	return b.String()
}

func TestIndependentTransformationsRunConcurrently(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	const n = 4
	files := map[string]string{
		"parsers/base_parser.hcl":    testutil.BaseManifest,
		"parsers/barrier_parser.hcl": testutil.ParserManifest("BarrierParser", "NewBarrierParser"),
		"main.hcl":                   barrierJob(n),
	}

	// --- Act ---
	result := runIntegrationTestWithOptions(t, harnessOptions{Workers: n}, files, newBarrierModule(n))

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, n, result.Report.Succeeded, "all transformations must be in flight at once")
}

func TestSingleWorkerRunsInInputOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	log := &testutil.CallLog{}
	var job strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&job, `
transformation {
  parser    = "StubParser"
  operation = "unzip"
  origin    = "%d.zip"
  destiny   = "out/"
}
`, i)
	}
	files := map[string]string{
		"parsers/base_parser.hcl": testutil.BaseManifest,
		"parsers/stub_parser.hcl": testutil.ParserManifest("StubParser", "NewStubParser"),
		"main.hcl":                job.String(),
	}

	// --- Act ---
	result := runIntegrationTestWithOptions(t, harnessOptions{Workers: 1}, files, &testutil.StubModule{Log: log})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{
		"unzip 0.zip -> out/",
		"unzip 1.zip -> out/",
		"unzip 2.zip -> out/",
		"unzip 3.zip -> out/",
		"unzip 4.zip -> out/",
	}, log.Calls())
	for i, res := range result.Report.Results {
		assert.Equal(t, i, res.Descriptor.Index)
		assert.Equal(t, engine.KindSucceeded, res.Outcome.Kind)
	}
}
