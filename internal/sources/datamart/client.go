package datamart

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"

	gocache "github.com/patrickmn/go-cache"

	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// DefaultBaseURL is the DataMart endpoint queried when none is configured.
const DefaultBaseURL = "https://apps.fs.usda.gov/fiadb-api"

// Client queries named inventory tables from a DataMart-style endpoint.
// Responses are cached in-process so the tree and plot fetches for the
// same AOI within one session hit the network once each.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *gocache.Cache
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the endpoint base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithAPIKey sets the credential required for indexed access mode.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a DataMart client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		cache:   gocache.New(constants.TableCacheTTL, 2*constants.TableCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether the client can use indexed access mode.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// FetchTable retrieves one named table scoped to the region's geographic
// extent and returns the parsed CSV records, header row included.
func (c *Client) FetchTable(ctx context.Context, table inventory.TableName, region *aoi.Region, indexed bool) ([][]string, error) {
	bound := region.GeographicBound()
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
		bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1])

	mode := "fullscan"
	if indexed {
		mode = "indexed"
	}

	cacheKey := fmt.Sprintf("%s|%s|%s", table, bbox, mode)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([][]string), nil
	}

	endpoint := fmt.Sprintf("%s/v1/tables/%s", c.baseURL, url.PathEscape(table.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapAPI("datamart", 0, err)
	}

	q := req.URL.Query()
	q.Set("bbox", bbox)
	q.Set("mode", mode)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "text/csv")
	if indexed {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Source:   "datamart",
			Endpoint: endpoint,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &errors.APIError{
			Source:     "datamart",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "indexed access rejected; check FIA_DATAMART_API_KEY",
			Err:        errors.ErrAPIKeyRequired,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{
			Source:     "datamart",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // validated against the header later
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", endpoint, err)
	}

	c.cache.Set(cacheKey, records, gocache.DefaultExpiration)
	return records, nil
}

// FlushCache drops all cached table responses.
func (c *Client) FlushCache() {
	c.cache.Flush()
}
