package app

import (
	"errors"
	"fmt"
)

// Store kinds accepted by Config.StoreKind.
const (
	StoreNone = ""
	StoreDir  = "dir"
	StoreS3   = "s3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPath     string // job definition file or directory
	ModulesPath string // local parser manifests

	Workers         int
	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// StoreKind selects where remote parser modules are fetched from.
	StoreKind  string
	StoreRoot  string // root directory for the dir store
	S3Region   string
	S3Endpoint string

	// StagingDir is the parent of the per-run module staging directory.
	// Empty means the system temp directory.
	StagingDir string
	NotifyURL  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if cfg.JobPath == "" {
		errs = append(errs, errors.New("JobPath is a required configuration field and cannot be empty"))
	}
	if cfg.ModulesPath == "" {
		errs = append(errs, errors.New("ModulesPath cannot be empty"))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort))
	}
	switch cfg.StoreKind {
	case StoreNone, StoreS3:
	case StoreDir:
		if cfg.StoreRoot == "" {
			errs = append(errs, errors.New("the dir store requires a store root"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q: must be 'dir' or 's3'", cfg.StoreKind))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}
