package dataprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"fusiondash/pkg/contracts/domain"
)

// CroreDivisor converts rupee amounts to crore.
const CroreDivisor = 1e7

// Result is the output of one pipeline run.
type Result struct {
	Filtered *Table
	KPIs     domain.KPIs
	Regions  []domain.RegionAggregate
	Buckets  []domain.BucketAggregate
}

// Apply filters the table and computes KPIs and both summaries. The input
// table is not modified.
func Apply(t *Table, roles domain.Roles, sel domain.Selection) (*Result, error) {
	filtered, err := Filter(t, roles, sel)
	if err != nil {
		return nil, err
	}
	return &Result{
		Filtered: filtered,
		KPIs:     ComputeKPIs(filtered),
		Regions:  AggregateByRegion(filtered, roles.Region),
		Buckets:  AggregateByBucket(filtered, roles.Bucket),
	}, nil
}

// Filter keeps the rows matching the selection. Region and bucket are exact
// text matches unless "All". A table without a Connect column counts every
// row as not connected.
func Filter(t *Table, roles domain.Roles, sel domain.Selection) (*Table, error) {
	sel = sel.Normalize()
	if !sel.Connect.Valid() {
		return nil, fmt.Errorf("unknown connect status %q", sel.Connect)
	}
	if !t.HasColumn(roles.Region) {
		return nil, &ColumnNotFoundError{Roles: []string{RoleRegion}, Columns: t.Columns()}
	}
	if !t.HasColumn(roles.Bucket) {
		return nil, &ColumnNotFoundError{Roles: []string{RoleBucket}, Columns: t.Columns()}
	}

	out := t
	if sel.Region != domain.SelectAll {
		out = matchText(out, roles.Region, sel.Region)
	}
	if sel.Bucket != domain.SelectAll {
		out = matchText(out, roles.Bucket, sel.Bucket)
	}

	switch sel.Connect {
	case domain.ConnectConnected:
		connect, ok := out.Floats(ColumnConnect)
		if !ok {
			return out.Where(func(int) bool { return false }), nil
		}
		out = out.Where(func(i int) bool { return connect[i] > 0 })
	case domain.ConnectNotConnected:
		connect, ok := out.Floats(ColumnConnect)
		if !ok {
			return out, nil
		}
		out = out.Where(func(i int) bool { return connect[i] == 0 })
	}
	return out, nil
}

func matchText(t *Table, column, want string) *Table {
	values, _ := t.Strings(column)
	return t.Where(func(i int) bool { return values[i] == want })
}

// Total returns the integer-truncated sum of a column, or 0 if it is absent.
func Total(t *Table, column string) int64 {
	return int64(columnSum(t, column))
}

// Crore returns the column sum in crore rounded to two places, or 0 if the
// column is absent.
func Crore(t *Table, column string) float64 {
	return roundCrore(columnSum(t, column))
}

// ComputeKPIs returns the eight dashboard totals for a filtered table.
func ComputeKPIs(t *Table) domain.KPIs {
	return domain.KPIs{
		Loans:        Total(t, ColumnLoans),
		Dialed:       Total(t, ColumnDialed),
		Connected:    Total(t, ColumnConnect),
		PTP:          Total(t, ColumnPTP),
		Intensity:    Total(t, ColumnIntensity),
		CollectionCr: Crore(t, ColumnCollectionAmount),
		POSCr:        Crore(t, ColumnPrincipalOutstanding),
		DefaultCr:    Crore(t, ColumnTotalDefaultAmount),
	}
}

// AggregateByRegion sums collection and principal outstanding per region,
// sorted by region. Rows with a blank region are left out.
func AggregateByRegion(t *Table, regionColumn string) []domain.RegionAggregate {
	keys, groups := groupRows(t, regionColumn)
	collection, _ := t.Floats(ColumnCollectionAmount)
	principal, _ := t.Floats(ColumnPrincipalOutstanding)

	out := make([]domain.RegionAggregate, 0, len(keys))
	for _, k := range keys {
		agg := domain.RegionAggregate{
			Region:               k,
			CollectionAmount:     sumAt(collection, groups[k]),
			PrincipalOutstanding: sumAt(principal, groups[k]),
		}
		agg.CollectionCr = agg.CollectionAmount / CroreDivisor
		agg.POSCr = agg.PrincipalOutstanding / CroreDivisor
		out = append(out, agg)
	}
	return out
}

// AggregateByBucket sums collection per DPD bucket, sorted by bucket. Rows
// with a blank bucket are left out.
func AggregateByBucket(t *Table, bucketColumn string) []domain.BucketAggregate {
	keys, groups := groupRows(t, bucketColumn)
	collection, _ := t.Floats(ColumnCollectionAmount)

	out := make([]domain.BucketAggregate, 0, len(keys))
	for _, k := range keys {
		amount := sumAt(collection, groups[k])
		out = append(out, domain.BucketAggregate{
			Bucket:           k,
			CollectionAmount: amount,
			CollectionCr:     amount / CroreDivisor,
		})
	}
	return out
}

// groupRows returns the sorted non-blank keys of a column and the row
// indexes of each key.
func groupRows(t *Table, column string) ([]string, map[string][]int) {
	values, ok := t.Strings(column)
	if !ok {
		return nil, nil
	}
	groups := make(map[string][]int)
	keys := make([]string, 0)
	for i, v := range values {
		if isBlank(v) {
			continue
		}
		if _, seen := groups[v]; !seen {
			keys = append(keys, v)
		}
		groups[v] = append(groups[v], i)
	}
	sort.Strings(keys)
	return keys, groups
}

func columnSum(t *Table, column string) float64 {
	values, ok := t.Floats(column)
	if !ok {
		return 0
	}
	return sum(values)
}

func sumAt(values []float64, rows []int) float64 {
	if values == nil {
		return 0
	}
	picked := make([]float64, len(rows))
	for i, r := range rows {
		picked[i] = values[r]
	}
	return sum(picked)
}

func sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total, err := stats.Sum(values)
	if err != nil {
		return 0
	}
	return total
}

// roundCrore rounds the exact binary quotient to two places, half to even,
// so 0.125 becomes 0.12 and 2.675 (stored just below) becomes 2.67.
func roundCrore(amount float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(amount/CroreDivisor, 'f', 2, 64), 64)
	if err != nil {
		return 0
	}
	return rounded
}
