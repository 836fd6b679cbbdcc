// Package services implements the business logic layer of the collections
// dashboard. It sits between the HTTP handlers and the dataprocessing
// package.
//
// # Services
//
//	- TableCache: one loaded table per file path, shared by every request
//	- DashboardService: filters, KPIs, summaries, refresh and export
//	- HealthService: liveness, readiness and runtime statistics
//
// # Request Flow
//
// Every dashboard request checks that the data file exists, takes the table
// from the cache (loading it on the first request), resolves the region and
// bucket columns, and runs the filter and aggregation pipeline on the cached
// table. The cached table is never modified. Refresh is the only way to make
// the service read the file again.
//
// # Error Handling
//
// Data errors are fatal to a request and no partial view is returned:
//
//	- ErrFileNotFound when the configured file is missing
//	- ErrSpreadsheetUnparseable when it cannot be read as a table
//	- ErrColumnNotFound when no column matches "state" or "dpd"
//
// ErrorCode maps these to the API error codes used by the transport layer.
package services
