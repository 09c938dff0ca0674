package inventory

import "sync"

// Tables is the set of named record collections produced by one source
// fetch. It is safe for concurrent use, though the pipeline itself runs
// fetches sequentially.
type Tables struct {
	mu    sync.RWMutex
	trees []TreeRecord
	plots []PlotRecord
}

// NewTables creates an empty Tables container.
func NewTables() *Tables {
	return &Tables{}
}

// SetTrees replaces the tree table.
func (t *Tables) SetTrees(trees []TreeRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trees = trees
}

// SetPlots replaces the plot table.
func (t *Tables) SetPlots(plots []PlotRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plots = plots
}

// Trees returns the tree table.
func (t *Tables) Trees() []TreeRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trees
}

// Plots returns the plot table.
func (t *Tables) Plots() []PlotRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.plots
}

// Len returns the number of records in the named table.
func (t *Tables) Len(name TableName) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	switch name {
	case TableTree:
		return len(t.trees)
	case TablePlot:
		return len(t.plots)
	default:
		return 0
	}
}
