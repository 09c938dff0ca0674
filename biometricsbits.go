// Package biometricsbits compares FIA forest inventory estimates obtained
// through two independent access paths: the DataMart HTTP API and the bulk
// state CSV archives. It resolves a county area of interest, fetches tree-
// and plot-level tables from each source, aggregates them to per-plot
// stocking metrics, and reconciles the results side by side.
package biometricsbits

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/internal/sources/bulk"
	"github.com/SilviaTerra/BiometricsBits/internal/sources/datamart"
	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/logging"
)

// Pipeline runs the end-to-end source comparison for one region.
type Pipeline interface {
	// Compare resolves the region, fetches every configured source,
	// aggregates per-plot metrics, and reconciles them.
	Compare(ctx context.Context) (*Result, error)

	// Cleanup releases resources held by the configured sources.
	Cleanup() error
}

// RegionResolver turns a region name into a resolved area of interest.
// *aoi.Loader is the production implementation.
type RegionResolver interface {
	Resolve(ctx context.Context, name string) (*aoi.Region, error)
}

// pipeline is the internal implementation of the Pipeline interface.
type pipeline struct {
	config  *config
	loader  RegionResolver
	sources *sources.Sources
	logger  *zerolog.Logger
}

// New creates a Pipeline with the given options.
func New(opts ...Option) (Pipeline, error) {
	p := &pipeline{
		config: defaultConfig(),
	}

	if err := p.options(opts...); err != nil {
		return nil, errors.NewConfigError("pipeline", "applying options", err)
	}
	if p.config.region == "" {
		return nil, errors.NewValidationError("region", "", "a region such as \"Washington, OR\" is required")
	}

	if p.logger == nil {
		p.logger = logging.Default()
	}

	if err := os.MkdirAll(p.config.cacheDir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create cache dir", p.config.cacheDir, err)
	}

	if p.loader == nil {
		p.loader = aoi.NewLoader(
			aoi.WithCacheDir(p.config.cacheDir),
			aoi.WithHTTPClient(p.config.httpClient),
		)
	}

	// Tests inject fake sources; everything else gets the real pair.
	if p.sources == nil {
		p.sources = defaultSources(p.config)
	}

	return p, nil
}

func defaultSources(c *config) *sources.Sources {
	s := sources.New()

	dmOpts := []datamart.ClientOption{datamart.WithHTTPClient(c.httpClient)}
	if c.apiKey != "" {
		dmOpts = append(dmOpts, datamart.WithAPIKey(c.apiKey))
	}
	s.Set(sources.DataMartID, datamart.New(
		datamart.WithClient(datamart.NewClient(dmOpts...)),
	))

	s.Set(sources.BulkID, bulk.New(
		bulk.WithClient(bulk.NewClient(
			bulk.WithHTTPClient(&http.Client{Timeout: constants.BulkDownloadTimeout}),
			bulk.WithWorkDir(c.cacheDir),
		)),
		bulk.WithStorePath(c.storePath()),
	))

	return s
}

// Cleanup releases resources held by the configured sources.
func (p *pipeline) Cleanup() error {
	var firstErr error
	for _, src := range p.sources.List() {
		if err := src.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
