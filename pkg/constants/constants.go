// Package constants provides shared constants used throughout the
// BiometricsBits codebase. This includes timeouts, cache lifetimes, file
// permissions, and inventory defaults that should be consistent across
// the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to
	// inventory endpoints
	DefaultHTTPTimeout = 30 * time.Second

	// BulkDownloadTimeout is the timeout for downloading a full state
	// CSV archive, which can be hundreds of megabytes
	BulkDownloadTimeout = 15 * time.Minute

	// FetchTimeout is the timeout for fetching all tables from a single source
	FetchTimeout = 20 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 30 * time.Minute
)

// Cache constants define how long downloaded artifacts stay fresh
const (
	// ShapefileCacheTTL is how long a downloaded boundary archive is reused
	// before being re-downloaded
	ShapefileCacheTTL = 24 * time.Hour

	// TableCacheTTL is how long an in-process DataMart table response is reused
	TableCacheTTL = 1 * time.Hour

	// BulkStoreTTL is how long a state's bulk tables in the local store are
	// considered fresh
	BulkStoreTTL = 7 * 24 * time.Hour
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Inventory defaults
const (
	// DefaultYearFloor is the oldest inventory year kept in pipeline output.
	// Plots measured before this year are excluded.
	DefaultYearFloor = 2010
)
