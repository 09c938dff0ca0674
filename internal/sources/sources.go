// Package sources defines the interface and registry for inventory data
// sources. A source fetches tree- and plot-level tables for a region
// through its own access path and normalizes them to the canonical
// inventory schema.
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// ID identifies a source implementation. It matches the inventory source
// tag the implementation stamps on its output.
type ID = inventory.SourceID

// Known source IDs.
const (
	DataMartID = inventory.SourceDataMart
	BulkID     = inventory.SourceBulk
)

// IDs returns all available source IDs.
func IDs() []ID {
	return inventory.SourceIDs()
}

// IsValid returns true if the ID names a known source.
func IsValid(id ID) bool {
	return slices.Contains(IDs(), id)
}

// Request scopes a fetch. Every field a particular source ignores is
// documented on the implementation.
type Request struct {
	// Region is the resolved area of interest.
	Region *aoi.Region

	// Indexed selects the indexed access mode on sources that support it.
	// Indexed access requires credentials; without them the source falls
	// back to its slower full-scan mode.
	Indexed bool

	// MostRecent keeps only the latest inventory cycle per plot on
	// sources that return the full measurement history.
	MostRecent bool
}

// Source is an inventory data source.
type Source interface {
	// ID returns the identifier of this source.
	ID() ID

	// Fetch retrieves the region's tables through this source's access path.
	Fetch(ctx context.Context, req Request) error

	// Tables returns the normalized tables from the last Fetch.
	Tables() *inventory.Tables

	// Cleanup releases any resources held by the source.
	Cleanup() error
}

// Sources is a thread-safe container for managing multiple data sources.
type Sources struct {
	mu      sync.RWMutex
	sources map[ID]Source
}

// New creates a new Sources instance.
func New() *Sources {
	return &Sources{
		sources: make(map[ID]Source),
	}
}

// Get returns a source by ID.
func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[id]
	return src, found
}

// Set sets a source by ID.
func (s *Sources) Set(id ID, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[id] = src
}

// Delete deletes a source by ID.
func (s *Sources) Delete(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// List returns a slice of all sources.
func (s *Sources) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sources := make([]Source, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, src)
	}
	return sources
}
