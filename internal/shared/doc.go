// Package shared holds code used across packages that belongs to no single
// layer. Today that is only the testutil subpackage.
//
// # Test Utilities
//
// testutil provides:
//
//	- BufferedSlogHandler for asserting on structured logs
//	- Allocation workbook and CSV fixtures written to temporary directories
//
// Example usage:
//
//	func TestDashboard(t *testing.T) {
//	    path := testutil.WriteStandardAllocation(t)
//	    logger, logs := testutil.NewTestLogger(t)
//	    // build the service under test with path and logger
//	}
package shared
