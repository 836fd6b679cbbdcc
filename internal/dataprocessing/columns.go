package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fusiondash/pkg/contracts/domain"
)

// Known column names of the allocation sheet.
const (
	ColumnLoans                = "No of Loans"
	ColumnDialed               = "Dailed Customers"
	ColumnConnect              = "Connect"
	ColumnPTP                  = "Nos. of PTP"
	ColumnLoansPaid            = "Nos of Loans Paid"
	ColumnIntensity            = "Intensity"
	ColumnCollectionAmount     = "Collection Amount"
	ColumnPrincipalOutstanding = "Principal Outstanding"
	ColumnPOS100               = "POS 100%"
	ColumnTotalAmount100       = "Total Amt 100%"
	ColumnTotalDefaultAmount   = "Total Default Amount"
)

// NumericColumns are coerced to numbers when the table is loaded.
var NumericColumns = []string{
	ColumnLoans,
	ColumnDialed,
	ColumnConnect,
	ColumnPTP,
	ColumnLoansPaid,
	ColumnIntensity,
	ColumnCollectionAmount,
	ColumnPrincipalOutstanding,
	ColumnPOS100,
	ColumnTotalAmount100,
	ColumnTotalDefaultAmount,
}

// Keywords used to discover the role columns.
var (
	RegionKeywords = []string{"state"}
	BucketKeywords = []string{"dpd"}
)

// Role names used in error messages.
const (
	RoleRegion = "State"
	RoleBucket = "DPD"
)

// ErrColumnNotFound is matched by every ColumnNotFoundError.
var ErrColumnNotFound = errors.New("required column not found")

// ColumnNotFoundError names the roles that no column could be bound to.
type ColumnNotFoundError struct {
	Roles   []string
	Columns []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("%s column not found in Excel", strings.Join(e.Roles, " / "))
}

// Is makes errors.Is(err, ErrColumnNotFound) true.
func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

func isNumericColumn(name string) bool {
	for _, c := range NumericColumns {
		if c == name {
			return true
		}
	}
	return false
}

// ToNumber converts a cell to a number. Anything that does not parse as a
// finite decimal number, including blanks and thousands separators, is 0.
func ToNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, "_xX") {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FindColumn returns the first column, in table order, whose lowercased name
// contains any of the keywords.
func FindColumn(columns []string, keywords []string) (string, bool) {
	for _, c := range columns {
		lower := strings.ToLower(c)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return c, true
			}
		}
	}
	return "", false
}

// ResolveRoles binds the region and bucket roles. Both are required.
func ResolveRoles(t *Table) (domain.Roles, error) {
	columns := t.Columns()
	region, okRegion := FindColumn(columns, RegionKeywords)
	bucket, okBucket := FindColumn(columns, BucketKeywords)

	if okRegion && okBucket {
		return domain.Roles{Region: region, Bucket: bucket}, nil
	}

	missing := &ColumnNotFoundError{Columns: columns}
	if !okRegion {
		missing.Roles = append(missing.Roles, RoleRegion)
	}
	if !okBucket {
		missing.Roles = append(missing.Roles, RoleBucket)
	}
	return domain.Roles{}, missing
}
