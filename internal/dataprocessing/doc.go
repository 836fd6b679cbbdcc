// Package dataprocessing turns a loan-recovery allocation spreadsheet into the
// figures shown on the collections dashboard.
//
// # Architecture
//
// The package is organized into four pieces:
//
// 1. Loader: reads the first sheet of a workbook (or a CSV file) into a Table,
// trimming column names and coercing the known numeric columns
// 2. Resolver: binds the region and bucket roles to columns by substring match
// 3. Pipeline: filters a Table by region, bucket and connect status and computes
// KPIs plus the state-wise and bucket-wise summaries
// 4. Options and charts: the choices offered by each filter and the bar chart
// descriptions built from the summaries
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{}, logger)
//	table, err := loader.Load(ctx, "Fusion_1_30_Allocation.xlsx")
//	if err != nil {
//	    return err
//	}
//	roles, err := dataprocessing.ResolveRoles(table)
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.Apply(table, roles, domain.AllSelection())
//
// # Data Flow
//
//	Workbook → Loader → Table → Resolver → Pipeline → KPIs + summaries
//
// # Numeric coercion
//
// Cells of the numeric columns that cannot be parsed as numbers become 0 and
// are not reported. Blank cells, text such as "n/a" and thousands separators
// all end up as 0.
//
// # Immutability
//
// A Table never changes after it is built. Filtering returns a new Table that
// shares the underlying rows, so a loaded Table can be cached and read from
// many goroutines.
package dataprocessing
