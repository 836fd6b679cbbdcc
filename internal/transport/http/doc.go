// Package http implements the HTTP handlers of the collections dashboard.
// Handlers stay thin: they bind and validate query parameters, call the
// dashboard or health service, and format the response.
//
// # Routes
//
//	GET  /api/dashboard          dashboard view for a selection
//	GET  /api/dashboard/filters  filter options
//	POST /api/dashboard/refresh  drop the cached table and reload it
//	GET  /api/dashboard/export   filtered rows as CSV or XLSX
//	GET  /api/health[/ready|/live|/detailed]
//	GET  /                       server-rendered dashboard page
//
// # Responses
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "data": ...}
//
// Failures are RFC 7807 problem documents produced by the shared
// ErrorHandler. Missing files, unreadable spreadsheets and unresolved
// columns never yield a partial dashboard; the HTML page shows only the
// error message in those cases.
//
// # Testing
//
// Handlers are tested with httptest and a testify mock of
// DashboardServiceInterface.
package http
