package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/parsegrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	defaults := app.Config{
		ModulesPath: "parsers",
		Workers:     4,
		LogFormat:   "text",
		LogLevel:    "info",
	}
	with := func(mutate func(c *app.Config)) *app.Config {
		c := defaults
		mutate(&c)
		return &c
	}

	testCases := []struct {
		name       string
		args       []string
		want       *app.Config
		shouldExit bool
		exitCode   int
	}{
		{
			name: "positional job path",
			args: []string{"jobs/main.hcl"},
			want: with(func(c *app.Config) { c.JobPath = "jobs/main.hcl" }),
		},
		{
			name: "job flag wins over shorthand and positional",
			args: []string{"-job", "a.hcl", "-j", "b.hcl", "c.hcl"},
			want: with(func(c *app.Config) { c.JobPath = "a.hcl" }),
		},
		{
			name: "all options",
			args: []string{
				"-j", "job.yaml",
				"--modules-path", "custom",
				"--workers", "8",
				"--log-format", "JSON",
				"--log-level", "Debug",
				"--healthcheck-port", "8080",
				"--store", "dir",
				"--store-root", "/srv/modules",
				"--staging-dir", "/tmp/stage",
				"--notify-url", "http://localhost:3000/socket.io/",
			},
			want: with(func(c *app.Config) {
				c.JobPath = "job.yaml"
				c.ModulesPath = "custom"
				c.Workers = 8
				c.LogFormat = "json"
				c.LogLevel = "debug"
				c.HealthcheckPort = 8080
				c.StoreKind = "dir"
				c.StoreRoot = "/srv/modules"
				c.StagingDir = "/tmp/stage"
				c.NotifyURL = "http://localhost:3000/socket.io/"
			}),
		},
		{
			name: "s3 store",
			args: []string{"--store", "s3", "--s3-region", "eu-west-1", "--s3-endpoint", "http://minio:9000", "job.hcl"},
			want: with(func(c *app.Config) {
				c.JobPath = "job.hcl"
				c.StoreKind = "s3"
				c.S3Region = "eu-west-1"
				c.S3Endpoint = "http://minio:9000"
			}),
		},
		{name: "help", args: []string{"-h"}, shouldExit: true},
		{name: "no job path", args: []string{"--workers", "2"}, shouldExit: true},
		{name: "unknown flag", args: []string{"--nope"}, exitCode: 2},
		{name: "bad log format", args: []string{"--log-format", "xml", "job.hcl"}, exitCode: 2},
		{name: "bad log level", args: []string{"--log-level", "loud", "job.hcl"}, exitCode: 2},
		{name: "zero workers", args: []string{"--workers", "0", "job.hcl"}, exitCode: 2},
		{name: "dir store without root", args: []string{"--store", "dir", "job.hcl"}, exitCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := Parse(tc.args, out)

			// --- Assert ---
			if tc.exitCode != 0 {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %v", err)
				assert.Equal(t, tc.exitCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shouldExit, shouldExit)
			if tc.shouldExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			if diff := cmp.Diff(tc.want, cfg); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	// --- Arrange ---
	t.Setenv("PARSEGRID_WORKERS", "7")
	t.Setenv("PARSEGRID_MODULES_PATH", "from-env")
	t.Setenv("PARSEGRID_JOB", "env-job.hcl")

	// --- Act ---
	cfg, _, err := Parse([]string{"--workers", "3"}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers, "flags override the environment")
	assert.Equal(t, "from-env", cfg.ModulesPath)
	assert.Equal(t, "env-job.hcl", cfg.JobPath)
}

func TestParse_MalformedEnvironment(t *testing.T) {
	t.Setenv("PARSEGRID_WORKERS", "many")

	_, _, err := Parse([]string{"job.hcl"}, &bytes.Buffer{})

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "PARSEGRID_WORKERS")
}

func TestParse_EnvFile(t *testing.T) {
	// --- Arrange ---
	// Register cleanup for the variable, then unset it so the file can set it.
	t.Setenv("PARSEGRID_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("PARSEGRID_LOG_LEVEL"))

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PARSEGRID_LOG_LEVEL=warn\n"), 0o600))

	// --- Act ---
	cfg, _, err := Parse([]string{"--env-file=" + envFile, "job.hcl"}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParse_MissingEnvFile(t *testing.T) {
	_, _, err := Parse([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env"), "job.hcl"}, &bytes.Buffer{})

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
}

func TestEnvFileArg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.env", envFileArg([]string{"--env-file", "a.env", "job.hcl"}))
	assert.Equal(t, "b.env", envFileArg([]string{"-env-file=b.env"}))
	assert.Equal(t, "", envFileArg([]string{"job.hcl", "--", "--env-file", "c.env"}))
	assert.Equal(t, "", envFileArg([]string{"job.hcl"}))
}
