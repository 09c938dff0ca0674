package bulk

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// zipCSV wraps CSV content in a single-member zip archive.
func zipCSV(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func newTestSource(t *testing.T) *Source {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	dir := t.TempDir()
	src := New(
		WithClient(NewClient(WithHTTPClient(httpClient), WithWorkDir(dir))),
		WithStorePath(filepath.Join(dir, "store.db")),
	)
	t.Cleanup(func() { _ = src.Cleanup() })
	return src
}

func registerStateArchives(t *testing.T) {
	t.Helper()
	treeCSV := "PLT_CN,TPA_UNADJ,DIA\n" +
		"100,6.018046,10.2\n" + // inside AOI
		"100,6.018046,12.4\n" +
		"200,6.018046,9.0\n" // outside AOI
	plotCSV := "CN,PLOT,INVYR,LAT,LON\n" +
		"100,1,2015,44.5,-123.5\n" + // inside
		"150,1,2005,44.5,-123.5\n" + // inside, older cycle of plot 1
		"200,2,2016,46.5,-117.5\n" // outside

	httpmock.RegisterResponder(http.MethodGet, DefaultBaseURL+"/OR_TREE.zip",
		httpmock.NewBytesResponder(200, zipCSV(t, "OR_TREE.csv", treeCSV)))
	httpmock.RegisterResponder(http.MethodGet, DefaultBaseURL+"/OR_PLOT.zip",
		httpmock.NewBytesResponder(200, zipCSV(t, "OR_PLOT.csv", plotCSV)))
}

func TestSourceFetchClipsToRegion(t *testing.T) {
	src := newTestSource(t)
	registerStateArchives(t)

	err := src.Fetch(context.Background(), sources.Request{Region: testRegion()})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Plots 100 and 150 are inside the AOI; 200 is not.
	if got := src.Tables().Len(inventory.TablePlot); got != 2 {
		t.Errorf("plot count = %d, want 2", got)
	}
	// Only trees on surviving plots remain.
	for _, tr := range src.Tables().Trees() {
		if tr.PlotID == "200" {
			t.Errorf("tree on clipped-out plot survived: %+v", tr)
		}
	}
}

func TestSourceFetchMostRecentCycle(t *testing.T) {
	src := newTestSource(t)
	registerStateArchives(t)

	err := src.Fetch(context.Background(), sources.Request{
		Region:     testRegion(),
		MostRecent: true,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	plots := src.Tables().Plots()
	if len(plots) != 1 {
		t.Fatalf("expected only the latest cycle, got %d plots", len(plots))
	}
	if plots[0].PlotID != "100" || plots[0].InventoryYear != 2015 {
		t.Errorf("kept plot = %+v", plots[0])
	}
}

func TestSourceFetchReusesStore(t *testing.T) {
	src := newTestSource(t)
	registerStateArchives(t)

	ctx := context.Background()
	req := sources.Request{Region: testRegion()}

	if err := src.Fetch(ctx, req); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	first := httpmock.GetTotalCallCount()

	if err := src.Fetch(ctx, req); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if httpmock.GetTotalCallCount() != first {
		t.Error("second fetch should be served from the store without downloads")
	}
}

func TestSourceFetchDownloadFailure(t *testing.T) {
	src := newTestSource(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultBaseURL+"/OR_TREE.zip",
		httpmock.NewStringResponder(404, "not found"))

	err := src.Fetch(context.Background(), sources.Request{Region: testRegion()})
	if err == nil {
		t.Fatal("expected fetch to propagate the download failure")
	}
}

func TestSourceID(t *testing.T) {
	if got := New().ID(); got != sources.BulkID {
		t.Errorf("ID() = %q, want %q", got, sources.BulkID)
	}
}
