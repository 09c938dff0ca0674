// Package app provides the application context and dependency management
// for the bbits CLI. It centralizes configuration, logging, and pipeline
// construction so commands stay thin.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	biometricsbits "github.com/SilviaTerra/BiometricsBits"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
)

// App represents the bbits application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Pipeline instance for the current run (lazy-initialized)
	mu       sync.Mutex
	pipeline biometricsbits.Pipeline
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger

	return a, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Pipeline returns a pipeline for the given region, creating it lazily.
// Repeated calls with the same app reuse the first instance.
func (a *App) Pipeline(region string) (biometricsbits.Pipeline, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pipeline != nil {
		return a.pipeline, nil
	}

	p, err := biometricsbits.New(a.pipelineOptions(region)...)
	if err != nil {
		return nil, err
	}
	a.pipeline = p
	return p, nil
}

func (a *App) pipelineOptions(region string) []biometricsbits.Option {
	opts := []biometricsbits.Option{
		biometricsbits.WithRegion(region),
		biometricsbits.WithYearFloor(a.config.YearFloor),
		biometricsbits.WithIndexedAccess(a.config.Indexed),
		biometricsbits.WithMostRecentCycle(a.config.MostRecent),
		biometricsbits.WithLogger(a.logger),
	}
	if a.config.CacheDir != "" {
		opts = append(opts, biometricsbits.WithCacheDir(a.config.CacheDir))
	}
	if a.config.APIKey != "" {
		opts = append(opts, biometricsbits.WithAPIKey(a.config.APIKey))
	}
	return opts
}

// Cleanup releases resources held by the pipeline, if one was created.
func (a *App) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pipeline == nil {
		return nil
	}
	return a.pipeline.Cleanup()
}
