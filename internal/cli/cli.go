package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/parsegrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envPrefix namespaces the environment variables that provide flag defaults.
const envPrefix = "PARSEGRID_"

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Before flags are parsed, the file named by --env-file (or ./.env when
// present) is loaded into the process environment without overriding
// variables that are already set. PARSEGRID_* variables then supply the
// flag defaults.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	if err := loadEnvFile(envFileArg(args)); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	env := &envDefaults{}

	flagSet := flag.NewFlagSet("parsegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
ParseGrid - Runs file transformation jobs with pluggable parsers.

Usage:
  parsegrid [options] [JOB_PATH]

Arguments:
  JOB_PATH
    Path to a job definition (.hcl, .yaml, .yml, .json) or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
		fmt.Fprintf(output, "\nEvery option can also be set through %s<OPTION> environment variables,\ne.g. %sWORKERS=8.\n", envPrefix, envPrefix)
	}

	jobFlag := flagSet.String("job", "", "Path to the job definition file or directory.")
	jFlag := flagSet.String("j", "", "Path to the job definition file or directory (shorthand).")
	flagSet.String("env-file", "", "Path to a .env file loaded before parsing. Defaults to ./.env when present.")
	modulesPathFlag := flagSet.String("modules-path", env.lookupString("MODULES_PATH", "parsers"), "Path to the directory containing parser manifests.")
	workersFlag := flagSet.Int("workers", env.lookupInt("WORKERS", 4), "Number of transformations executed concurrently.")
	logFormatFlag := flagSet.String("log-format", env.lookupString("LOG_FORMAT", "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.lookupString("LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	healthPortFlag := flagSet.Int("healthcheck-port", env.lookupInt("HEALTHCHECK_PORT", 0), "Port for the HTTP health check and report server. 0 is disabled.")
	storeFlag := flagSet.String("store", env.lookupString("STORE", ""), "Remote parser module store. Options: 'dir' or 's3'. Empty disables remote modules.")
	storeRootFlag := flagSet.String("store-root", env.lookupString("STORE_ROOT", ""), "Root directory of the 'dir' store; buckets are its subdirectories.")
	s3RegionFlag := flagSet.String("s3-region", env.lookupString("S3_REGION", ""), "AWS region of the 's3' store. Defaults to the AWS configuration.")
	s3EndpointFlag := flagSet.String("s3-endpoint", env.lookupString("S3_ENDPOINT", ""), "Custom S3 endpoint, e.g. a local MinIO.")
	stagingDirFlag := flagSet.String("staging-dir", env.lookupString("STAGING_DIR", ""), "Parent directory for fetched remote modules. Defaults to the system temp directory.")
	notifyURLFlag := flagSet.String("notify-url", env.lookupString("NOTIFY_URL", ""), "socket.io server that receives progress events.")

	if env.err != nil {
		return nil, false, &ExitError{Code: 2, Message: env.err.Error()}
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *jobFlag != "" {
		path = *jobFlag
	} else if *jFlag != "" {
		path = *jFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		path = os.Getenv(envPrefix + "JOB")
	}
	slog.Debug("Job path determined.", "path", path)

	if path == "" {
		slog.Debug("No job path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		JobPath:         path,
		ModulesPath:     *modulesPathFlag,
		Workers:         *workersFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		StoreKind:       strings.ToLower(*storeFlag),
		StoreRoot:       *storeRootFlag,
		S3Region:        *s3RegionFlag,
		S3Endpoint:      *s3EndpointFlag,
		StagingDir:      *stagingDirFlag,
		NotifyURL:       *notifyURLFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// envFileArg finds the --env-file value ahead of regular flag parsing.
func envFileArg(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "env-file" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// loadEnvFile loads path, or ./.env when path is empty and the file exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	slog.Debug("Loaded env file.", "path", path)
	return nil
}

// envDefaults reads PARSEGRID_* variables, remembering the first malformed one.
type envDefaults struct {
	err error
}

func (e *envDefaults) lookupString(name, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		return v
	}
	return fallback
}

func (e *envDefaults) lookupInt(name string, fallback int) int {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("invalid %s%s: %q is not an integer", envPrefix, name, v)
		}
		return fallback
	}
	return n
}
