package bulk

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/logging"
)

// DefaultBaseURL is the bulk CSV archive endpoint used when none is
// configured.
const DefaultBaseURL = "https://apps.fs.usda.gov/fia/datamart/CSV"

// Client downloads full state table archives ({STATE}_TREE.zip and
// {STATE}_PLOT.zip) and extracts their CSV payloads.
type Client struct {
	baseURL string
	workDir string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the archive base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithWorkDir sets the directory for in-flight downloads.
func WithWorkDir(dir string) ClientOption {
	return func(c *Client) {
		c.workDir = dir
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a bulk download client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		workDir: filepath.Join(os.TempDir(), "bbits-bulk"),
		http:    &http.Client{Timeout: constants.BulkDownloadTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DownloadTable fetches one state table archive and returns the parsed
// CSV records, header row included. table is the native archive table
// name ("TREE" or "PLOT").
func (c *Client) DownloadTable(ctx context.Context, state, table string) ([][]string, error) {
	name := fmt.Sprintf("%s_%s.zip", strings.ToUpper(state), strings.ToUpper(table))
	endpoint := c.baseURL + "/" + name

	logging.Ctx(ctx).Info().
		Str("source", "bulk").
		Str("archive", name).
		Msg("Downloading state table archive")

	archivePath, err := c.download(ctx, endpoint, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(archivePath) }()

	return readArchiveCSV(archivePath)
}

// download fetches the archive to the work directory and returns its path.
func (c *Client) download(ctx context.Context, endpoint, name string) (string, error) {
	if err := os.MkdirAll(c.workDir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", c.workDir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errors.WrapIO("request", endpoint, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &errors.APIError{
			Source:   "bulk",
			Endpoint: endpoint,
			Message:  "archive download failed",
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &errors.APIError{
			Source:     "bulk",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	tempFile, err := os.CreateTemp(c.workDir, "bulk_*.zip")
	if err != nil {
		return "", errors.WrapIO("create", "temp file", err)
	}
	defer func() { _ = tempFile.Close() }()
	tempPath := tempFile.Name()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.WrapIO("write", name, err)
	}

	finalPath := filepath.Join(c.workDir, name)
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.WrapIO("move", finalPath, err)
	}

	return finalPath, nil
}

// readArchiveCSV extracts the first CSV member of the archive and parses it.
func readArchiveCSV(archivePath string) ([][]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.WrapParse("zip", archivePath, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.WrapIO("open", f.Name, err)
		}

		reader := csv.NewReader(rc)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		_ = rc.Close()
		if err != nil {
			return nil, errors.WrapParse("csv", f.Name, err)
		}
		return records, nil
	}

	return nil, errors.NewParseError("zip", archivePath, "archive contains no CSV member", nil)
}
