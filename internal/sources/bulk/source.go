// Package bulk implements the bulk-download inventory source. It fetches
// full state tree and plot tables, persists them in a local SQLite store,
// and clips plots to the AOI polygon locally.
package bulk

import (
	"context"
	"os"
	"path/filepath"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
	"github.com/SilviaTerra/BiometricsBits/pkg/logging"
)

// Source is the bulk-download inventory source.
type Source struct {
	client    *Client
	storePath string
	store     *Store
	tables    *inventory.Tables
}

// Option configures a bulk source.
type Option func(*Source)

// WithClient sets a custom download client.
func WithClient(c *Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

// WithStorePath sets the SQLite store location.
func WithStorePath(path string) Option {
	return func(s *Source) {
		s.storePath = path
	}
}

// New creates a bulk source.
func New(opts ...Option) *Source {
	s := &Source{
		client:    NewClient(),
		storePath: filepath.Join(os.TempDir(), "bbits-bulk", "store.db"),
		tables:    inventory.NewTables(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the identifier of this source.
func (s *Source) ID() sources.ID {
	return sources.BulkID
}

// Fetch downloads (or reuses) the region's state tables, then clips plots
// to the AOI. The request's Indexed flag is ignored: bulk download has a
// single access mode.
func (s *Source) Fetch(ctx context.Context, req sources.Request) error {
	if req.Region == nil {
		return errors.NewValidationError("region", nil, "bulk fetch requires a resolved region")
	}
	state := req.Region.State

	if err := s.openStore(); err != nil {
		return errors.NewFetchError(s.ID().String(), nil, err)
	}

	if err := s.ensureState(ctx, state); err != nil {
		return errors.NewFetchError(s.ID().String(), nil, err)
	}

	trees, err := s.store.Trees(ctx, state)
	if err != nil {
		return errors.NewFetchError(s.ID().String(), []string{inventory.TableTree.String()}, err)
	}
	plots, err := s.store.Plots(ctx, state)
	if err != nil {
		return errors.NewFetchError(s.ID().String(), []string{inventory.TablePlot.String()}, err)
	}

	statewide := len(plots)
	plots = clip(plots, req.Region)
	if req.MostRecent {
		plots = mostRecent(plots)
	}
	trees = treesForPlots(trees, plots)

	s.tables.SetTrees(trees)
	s.tables.SetPlots(toPlotRecords(plots))

	logging.Ctx(ctx).Info().
		Str("source", s.ID().String()).
		Str("region", req.Region.Name).
		Int("statewide_plots", statewide).
		Int("plots", len(plots)).
		Int("trees", len(trees)).
		Msg("Clipped bulk tables to region")
	return nil
}

// openStore lazily opens the SQLite store.
func (s *Source) openStore() error {
	if s.store != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.storePath), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(s.storePath), err)
	}
	store, err := OpenStore(s.storePath)
	if err != nil {
		return err
	}
	s.store = store
	return nil
}

// ensureState downloads and persists the state tables unless the store
// already holds a fresh copy.
func (s *Source) ensureState(ctx context.Context, state string) error {
	fresh, err := s.store.Fresh(ctx, state)
	if err != nil {
		return err
	}
	if fresh {
		logging.Ctx(ctx).Debug().
			Str("source", s.ID().String()).
			Str("state", state).
			Msg("Using stored state tables")
		return nil
	}

	treeCSV, err := s.client.DownloadTable(ctx, state, "TREE")
	if err != nil {
		return err
	}
	trees, err := treesFromCSV(treeCSV)
	if err != nil {
		return err
	}

	plotCSV, err := s.client.DownloadTable(ctx, state, "PLOT")
	if err != nil {
		return err
	}
	plots, err := plotsFromCSV(plotCSV)
	if err != nil {
		return err
	}

	return s.store.ReplaceState(ctx, state, trees, plots)
}

// Tables returns the normalized tables from the last Fetch.
func (s *Source) Tables() *inventory.Tables {
	return s.tables
}

// Cleanup closes the store.
func (s *Source) Cleanup() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}
