package dataprocessing

import (
	"sort"

	"fusiondash/pkg/contracts/domain"
)

// Distinct returns the sorted unique values of a column, skipping empty cells.
func Distinct(t *Table, column string) []string {
	values, ok := t.Strings(column)
	if !ok {
		return []string{}
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if isBlank(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FilterOptions lists the choices for each selection control, each
// starting with "All".
func FilterOptions(t *Table, roles domain.Roles) domain.FilterOptions {
	connect := make([]domain.ConnectStatus, len(domain.ConnectStatuses))
	copy(connect, domain.ConnectStatuses)

	return domain.FilterOptions{
		Regions:  append([]string{domain.SelectAll}, Distinct(t, roles.Region)...),
		Buckets:  append([]string{domain.SelectAll}, Distinct(t, roles.Bucket)...),
		Connect:  connect,
		Roles:    roles,
		RowCount: t.Len(),
	}
}

// isBlank reports a missing cell. Whitespace-only text is a real value.
func isBlank(s string) bool {
	return s == ""
}
