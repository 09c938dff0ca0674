package aoi

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/logging"
)

// DefaultArchiveURL is the county boundary shapefile archive used when no
// other archive is configured (Census cartographic boundary file, 1:500k).
const DefaultArchiveURL = "https://www2.census.gov/geo/tiger/GENZ2021/shp/cb_2021_us_county_500k.zip"

// Loader resolves region names against a boundary shapefile archive.
type Loader struct {
	cacheDir   string
	archiveURL string
	client     *http.Client
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCacheDir sets the directory used to cache the downloaded archive.
func WithCacheDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.cacheDir = dir
	}
}

// WithArchiveURL overrides the boundary archive URL.
func WithArchiveURL(url string) LoaderOption {
	return func(l *Loader) {
		l.archiveURL = url
	}
}

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// NewLoader creates a boundary loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		cacheDir:   filepath.Join(os.TempDir(), "bbits-boundaries"),
		archiveURL: DefaultArchiveURL,
		client:     &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve looks up a region by name ("County, ST") and returns its polygon
// projected to the planar CRS. An unknown name yields a NotFoundError;
// there is no partial result, since no plot data can be scoped without
// the polygon.
func (l *Loader) Resolve(ctx context.Context, name string) (*Region, error) {
	county, state, err := ParseRegionName(name)
	if err != nil {
		return nil, err
	}
	if _, err := LookupState(state); err != nil {
		return nil, err
	}

	archive, err := l.ensureArchive(ctx)
	if err != nil {
		return nil, err
	}

	geo, err := findCounty(archive, county, state)
	if err != nil {
		return nil, err
	}

	return &Region{
		Name:       county + ", " + state,
		State:      state,
		Boundary:   MultiPolygonToPlanar(geo),
		Geographic: geo,
	}, nil
}

// ParseRegionName splits a "County, ST" region name into its parts.
func ParseRegionName(name string) (county, state string, err error) {
	idx := strings.LastIndex(name, ",")
	if idx < 0 {
		return "", "", errors.NewValidationError("region", name,
			`region name must have the form "County, ST"`)
	}

	county = strings.TrimSpace(name[:idx])
	state = strings.ToUpper(strings.TrimSpace(name[idx+1:]))
	if county == "" || len(state) != 2 {
		return "", "", errors.NewValidationError("region", name,
			`region name must have the form "County, ST"`)
	}
	return county, state, nil
}

// ensureArchive downloads the boundary archive unless a fresh cached copy
// exists, and returns the local path.
func (l *Loader) ensureArchive(ctx context.Context) (string, error) {
	if err := os.MkdirAll(l.cacheDir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", l.cacheDir, err)
	}

	archivePath := filepath.Join(l.cacheDir, filepath.Base(l.archiveURL))
	if info, err := os.Stat(archivePath); err == nil &&
		time.Since(info.ModTime()) < constants.ShapefileCacheTTL {
		logging.Ctx(ctx).Debug().Str("path", archivePath).Msg("Using cached boundary archive")
		return archivePath, nil
	}

	logging.Ctx(ctx).Info().Str("url", l.archiveURL).Msg("Downloading boundary archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.archiveURL, nil)
	if err != nil {
		return "", errors.WrapIO("request", l.archiveURL, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", &errors.APIError{
			Source:   "boundaries",
			Endpoint: l.archiveURL,
			Message:  "failed to download boundary archive",
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &errors.APIError{
			Source:     "boundaries",
			Endpoint:   l.archiveURL,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	tempFile, err := os.CreateTemp(l.cacheDir, "boundaries_*.zip")
	if err != nil {
		return "", errors.WrapIO("create", "temp file", err)
	}
	defer func() { _ = tempFile.Close() }()
	tempPath := tempFile.Name()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.WrapIO("write", archivePath, err)
	}

	// Atomically move into place so a partial download never looks cached.
	if err := os.Rename(tempPath, archivePath); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.WrapIO("move", archivePath, err)
	}

	return archivePath, nil
}

// findCounty scans the archive for the county polygon matching name and
// state abbreviation.
func findCounty(archivePath, county, state string) (orb.MultiPolygon, error) {
	reader, err := shp.OpenZip(archivePath)
	if err != nil {
		return nil, errors.WrapParse("shapefile", archivePath, err)
	}
	defer func() { _ = reader.Close() }()

	nameField, stateField := -1, -1
	for i, field := range reader.Fields() {
		switch strings.ToUpper(field.String()) {
		case "NAME":
			nameField = i
		case "STUSPS":
			stateField = i
		}
	}
	if nameField < 0 || stateField < 0 {
		return nil, errors.NewValidationError("fields", nil,
			"boundary shapefile is missing NAME/STUSPS attributes")
	}

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		if !strings.EqualFold(reader.Attribute(nameField), county) ||
			!strings.EqualFold(reader.Attribute(stateField), state) {
			continue
		}
		return MultiPolygonFromShape(poly), nil
	}
	if err := reader.Err(); err != nil {
		return nil, errors.WrapParse("shapefile", archivePath, err)
	}

	return nil, errors.NewNotFoundError("region", county+", "+state)
}

// MultiPolygonFromShape converts a shapefile polygon to an orb
// multipolygon. Shapefile outer rings wind clockwise and holes
// counter-clockwise; holes attach to the most recent outer ring.
func MultiPolygonFromShape(p *shp.Polygon) orb.MultiPolygon {
	var mp orb.MultiPolygon

	for i, start := range p.Parts {
		end := int32(len(p.Points))
		if i+1 < len(p.Parts) {
			end = p.Parts[i+1]
		}

		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}

		if ring.Orientation() == orb.CW || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
		} else {
			mp[len(mp)-1] = append(mp[len(mp)-1], ring)
		}
	}

	return mp
}
