// Package inventory defines the canonical data model shared by every
// forest-inventory source. Each source adapter normalizes its native
// tables (field names, identifier types) to these records; source-specific
// naming never leaks past the adapter boundary.
package inventory

import "slices"

// SourceID identifies an inventory data source.
type SourceID string

// String returns the string representation of a source ID.
func (id SourceID) String() string {
	return string(id)
}

// Known sources.
const (
	// SourceDataMart is the indexed/remote access path. It queries an
	// inventory endpoint scoped to an AOI polygon.
	SourceDataMart SourceID = "datamart"

	// SourceBulk is the bulk access path. It downloads full state tables
	// and clips them to the AOI locally.
	SourceBulk SourceID = "bulk"
)

// SourceIDs returns all known source IDs.
func SourceIDs() []SourceID {
	return []SourceID{SourceDataMart, SourceBulk}
}

// IsValid returns true if the ID is one of the defined constants.
func (id SourceID) IsValid() bool {
	return slices.Contains(SourceIDs(), id)
}

// TableName identifies a named table returned by a source fetch.
type TableName string

// String returns the string representation of a table name.
func (n TableName) String() string {
	return string(n)
}

// Tables every source is expected to produce.
const (
	TableTree TableName = "tree"
	TablePlot TableName = "plot"
)

// TableNames returns the tables a complete fetch must include.
func TableNames() []TableName {
	return []TableName{TableTree, TablePlot}
}
