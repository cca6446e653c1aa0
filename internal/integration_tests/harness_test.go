package integration_tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/parsegrid/internal/app"
	"github.com/specialistvlad/parsegrid/internal/engine"
	"github.com/specialistvlad/parsegrid/internal/objectstore"
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// harnessResult holds the outcomes of an integration test run.
type harnessResult struct {
	Dir       string
	LogOutput string
	Report    *engine.Report
	Err       error
}

// harnessOptions tweak a run beyond the files and modules.
type harnessOptions struct {
	Workers int
	Store   objectstore.Store
}

// runIntegrationTest writes files below a temporary root, then runs the job
// at "main.hcl" with manifests from "parsers/". Paths inside the files may
// use the {{root}} placeholder.
func runIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *harnessResult {
	t.Helper()
	return runIntegrationTestWithOptions(t, harnessOptions{}, files, modules...)
}

func runIntegrationTestWithOptions(t *testing.T, opts harnessOptions, files map[string]string, modules ...registry.Module) *harnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "parsers"), 0755))

	// 2. Write all files, expanding the root placeholder.
	expanded := make(map[string]string, len(files))
	for name, content := range files {
		expanded[name] = expandRoot(content, tmpDir)
	}
	testutil.WriteFiles(t, tmpDir, expanded)

	// 3. Configure the app to use the dedicated subdirectories.
	workers := opts.Workers
	if workers == 0 {
		workers = 4
	}
	appConfig := &app.Config{
		JobPath:     filepath.Join(tmpDir, "main.hcl"),
		ModulesPath: filepath.Join(tmpDir, "parsers"),
		LogLevel:    "debug",
		LogFormat:   "text",
		Workers:     workers,
		StagingDir:  tmpDir,
	}

	logBuffer := &testutil.SafeBuffer{}
	result := &harnessResult{Dir: tmpDir}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		testApp := app.NewApp(logBuffer, appConfig, modules...)
		if opts.Store != nil {
			testApp.UseStore(opts.Store)
		}
		result.Report, result.Err = testApp.Run(context.Background())
	}()

	result.LogOutput = logBuffer.String()
	if os.Getenv("PARSEGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}

func expandRoot(s, root string) string {
	return strings.ReplaceAll(s, "{{root}}", filepath.ToSlash(root))
}
