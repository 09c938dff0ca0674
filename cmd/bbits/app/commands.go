package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/internal/sources/bulk"
	"github.com/SilviaTerra/BiometricsBits/internal/sources/datamart"
	"github.com/SilviaTerra/BiometricsBits/pkg/aggregate"
	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
	"github.com/SilviaTerra/BiometricsBits/pkg/report"
)

const squareMetersPerAcre = 4046.8564224

// NewCompareCommand creates the compare command.
func (a *App) NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare \"County, ST\"",
		Short: "Compare per-plot metrics across both access paths",
		Long: `Compare fetches FIA tree and plot tables for a county through the
DataMart API and the bulk CSV archives, aggregates per-plot stocking
metrics from each, and reconciles them side by side.

A summary table is printed to stdout; per-plot CSVs and comparison
plots are written to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&a.config.YearFloor, "year-floor", a.config.YearFloor, "exclude plots measured before this inventory year (0 disables)")
	cmd.Flags().BoolVar(&a.config.Indexed, "indexed", a.config.Indexed, "use indexed DataMart access (requires FIA_DATAMART_API_KEY)")
	cmd.Flags().BoolVar(&a.config.MostRecent, "most-recent", a.config.MostRecent, "keep only the latest inventory cycle per plot")
	cmd.Flags().StringVar(&a.config.OutputDir, "output-dir", a.config.OutputDir, "directory for CSV exports and plots")

	return cmd
}

func (a *App) runCompare(cmd *cobra.Command, region string) error {
	p, err := a.Pipeline(region)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Cleanup(); err != nil {
			a.logger.Warn().Err(err).Msg("cleanup failed")
		}
	}()

	result, err := p.Compare(cmd.Context())
	if err != nil {
		return err
	}

	summaries := report.Summarize(result.Metrics)
	if err := report.WriteSummaryTable(cmd.OutOrStdout(), summaries); err != nil {
		return err
	}

	return a.writeArtifacts(result.Metrics, result.Rows)
}

// writeArtifacts exports per-plot CSVs and comparison plots to the
// configured output directory.
func (a *App) writeArtifacts(metrics map[inventory.SourceID][]inventory.PlotMetric, rows []inventory.ComparisonRow) error {
	dir := a.config.OutputDir
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create output dir", dir, err)
	}

	for id, m := range metrics {
		path := filepath.Join(dir, fmt.Sprintf("metrics_%s.csv", id))
		if err := writeCSVFile(path, func(f *os.File) error {
			return report.WriteMetricsCSV(f, m)
		}); err != nil {
			return err
		}
	}

	comparisonPath := filepath.Join(dir, "comparison.csv")
	if err := writeCSVFile(comparisonPath, func(f *os.File) error {
		return report.WriteComparisonCSV(f, rows)
	}); err != nil {
		return err
	}

	if err := report.TPAHistogram(filepath.Join(dir, "tpa_histogram.png"), rows); err != nil {
		return err
	}
	if err := report.TPAByYearScatter(filepath.Join(dir, "tpa_by_year.png"), metrics); err != nil {
		return err
	}

	a.logger.Info().Str("dir", dir).Msg("wrote comparison artifacts")
	return nil
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}

// NewFetchCommand creates the fetch command.
func (a *App) NewFetchCommand() *cobra.Command {
	var sourceID string

	cmd := &cobra.Command{
		Use:   "fetch \"County, ST\"",
		Short: "Fetch inventory tables through one access path",
		Long: `Fetch retrieves the tree and plot tables for a county through a single
source and prints the per-plot metrics as CSV to stdout.

Valid sources: datamart, bulk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, args[0], inventory.SourceID(sourceID))
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", string(sources.DataMartID), "source to fetch through: datamart or bulk")
	cmd.Flags().IntVar(&a.config.YearFloor, "year-floor", a.config.YearFloor, "exclude plots measured before this inventory year (0 disables)")
	cmd.Flags().BoolVar(&a.config.Indexed, "indexed", a.config.Indexed, "use indexed DataMart access (requires FIA_DATAMART_API_KEY)")
	cmd.Flags().BoolVar(&a.config.MostRecent, "most-recent", a.config.MostRecent, "keep only the latest inventory cycle per plot")

	return cmd
}

func (a *App) runFetch(cmd *cobra.Command, region string, id inventory.SourceID) error {
	if !sources.IsValid(id) {
		return errors.NewValidationError("source", string(id), "must be one of: datamart, bulk")
	}

	resolved, err := a.newLoader().Resolve(cmd.Context(), region)
	if err != nil {
		return err
	}

	src := a.newSource(id)
	defer func() {
		if err := src.Cleanup(); err != nil {
			a.logger.Warn().Err(err).Msg("cleanup failed")
		}
	}()

	req := sources.Request{
		Region:     resolved,
		Indexed:    a.config.Indexed,
		MostRecent: a.config.MostRecent,
	}
	if err := src.Fetch(cmd.Context(), req); err != nil {
		return err
	}

	tables := src.Tables()
	a.logger.Info().
		Str("source", string(id)).
		Int("trees", tables.Len(inventory.TableTree)).
		Int("plots", tables.Len(inventory.TablePlot)).
		Msg("fetched inventory tables")

	metrics := aggregate.PlotMetrics(
		tables.Trees(), tables.Plots(), id,
		aggregate.WithYearFloor(a.config.YearFloor),
	)
	return report.WriteMetricsCSV(cmd.OutOrStdout(), metrics)
}

func (a *App) newLoader() *aoi.Loader {
	opts := []aoi.LoaderOption{}
	if a.config.CacheDir != "" {
		opts = append(opts, aoi.WithCacheDir(a.config.CacheDir))
	}
	return aoi.NewLoader(opts...)
}

func (a *App) newSource(id inventory.SourceID) sources.Source {
	switch id {
	case sources.BulkID:
		var clientOpts []bulk.ClientOption
		srcOpts := []bulk.Option{}
		if a.config.CacheDir != "" {
			clientOpts = append(clientOpts, bulk.WithWorkDir(a.config.CacheDir))
			srcOpts = append(srcOpts, bulk.WithStorePath(filepath.Join(a.config.CacheDir, "fia.db")))
		}
		srcOpts = append(srcOpts, bulk.WithClient(bulk.NewClient(clientOpts...)))
		return bulk.New(srcOpts...)
	default:
		var clientOpts []datamart.ClientOption
		if a.config.APIKey != "" {
			clientOpts = append(clientOpts, datamart.WithAPIKey(a.config.APIKey))
		}
		return datamart.New(datamart.WithClient(datamart.NewClient(clientOpts...)))
	}
}

// NewAOICommand creates the aoi command.
func (a *App) NewAOICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "aoi \"County, ST\"",
		Short: "Resolve a county area of interest",
		Long: `AOI resolves a county boundary from the Census county shapefile and
prints its name, state, area, and geographic bound.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			region, err := a.newLoader().Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			bound := region.GeographicBound()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:  %s\n", region.Name)
			fmt.Fprintf(out, "state: %s\n", region.State)
			fmt.Fprintf(out, "area:  %.0f acres\n", region.Area()/squareMetersPerAcre)
			fmt.Fprintf(out, "bound: %.4f,%.4f to %.4f,%.4f\n",
				bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat())
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bbits version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
