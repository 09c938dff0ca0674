package biometricsbits

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
)

// Option is a function that configures a Pipeline instance.
type Option func(*pipeline) error

// config holds pipeline configuration assembled from options.
type config struct {
	region     string
	yearFloor  int
	cacheDir   string
	apiKey     string
	indexed    bool
	mostRecent bool
	httpClient *http.Client
}

func defaultConfig() *config {
	return &config{
		yearFloor:  constants.DefaultYearFloor,
		cacheDir:   defaultCacheDir(),
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "biometricsbits")
}

// storePath is where the bulk source keeps its local table store.
func (c *config) storePath() string {
	return filepath.Join(c.cacheDir, "fia.db")
}

func (p *pipeline) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return err
		}
	}
	return nil
}

// WithRegion sets the area of interest, named as "County, ST".
func WithRegion(name string) Option {
	return func(p *pipeline) error {
		p.config.region = name
		return nil
	}
}

// WithYearFloor sets the minimum inventory year a plot must have been
// measured in to be included. Zero disables the filter.
func WithYearFloor(year int) Option {
	return func(p *pipeline) error {
		p.config.yearFloor = year
		return nil
	}
}

// WithCacheDir sets the directory for downloaded shapefiles, bulk
// archives, and the local table store.
func WithCacheDir(dir string) Option {
	return func(p *pipeline) error {
		p.config.cacheDir = dir
		return nil
	}
}

// WithAPIKey sets the DataMart API key used for indexed access.
func WithAPIKey(key string) Option {
	return func(p *pipeline) error {
		p.config.apiKey = key
		return nil
	}
}

// WithIndexedAccess selects the indexed DataMart access mode. Without
// credentials the source falls back to a full scan.
func WithIndexedAccess(enabled bool) Option {
	return func(p *pipeline) error {
		p.config.indexed = enabled
		return nil
	}
}

// WithMostRecentCycle keeps only the latest inventory cycle per plot on
// sources that return the full measurement history.
func WithMostRecentCycle(enabled bool) Option {
	return func(p *pipeline) error {
		p.config.mostRecent = enabled
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for shapefile and DataMart
// requests. Bulk archive downloads keep their own long-timeout client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *pipeline) error {
		p.config.httpClient = client
		return nil
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *pipeline) error {
		p.logger = logger
		return nil
	}
}

// WithResolver replaces the default shapefile-backed region resolver.
// Intended for tests.
func WithResolver(r RegionResolver) Option {
	return func(p *pipeline) error {
		p.loader = r
		return nil
	}
}

// WithSources replaces the default source pair. Intended for tests.
func WithSources(s *sources.Sources) Option {
	return func(p *pipeline) error {
		p.sources = s
		return nil
	}
}
