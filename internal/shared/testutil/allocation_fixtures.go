package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// AllocationHeader is the column layout of the standard allocation fixture.
var AllocationHeader = []string{
	"Loan ID", "State", "DPD Bucket", "No of Loans", "Dailed Customers", "Connect",
	"Nos. of PTP", "Intensity", "Collection Amount", "Principal Outstanding",
	"Total Default Amount",
}

// AllocationRows is the body of the standard allocation fixture. Totals:
// 20 loans, 16 dialed, 4 connected, 3 PTP, intensity 7, collection 3.73 Cr,
// POS 9.5 Cr, default 0.35 Cr.
var AllocationRows = [][]interface{}{
	{"L001", "MH", "0-30", 10, 8, 3, 1, 4.5, 12345678, 50000000, 1000000},
	{"L002", "MH", "31-60", 5, 5, 0, 0, 2.5, 20000000, 30000000, 0},
	{"L003", "KA", "0-30", 5, 3, 1, 2, 0.5, 5000000, 15000000, 2500000},
}

// WriteAllocationWorkbook saves header and rows as the first sheet of an
// xlsx file in a temporary directory and returns its path.
func WriteAllocationWorkbook(t *testing.T, header []string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &head))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "Fusion_1_30_Allocation.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteStandardAllocation writes the standard allocation fixture.
func WriteStandardAllocation(t *testing.T) string {
	t.Helper()
	return WriteAllocationWorkbook(t, AllocationHeader, AllocationRows)
}

// WriteAllocationCSV writes a CSV file with the given records.
func WriteAllocationCSV(t *testing.T, records [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "allocation.csv")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.WriteAll(records))
	return path
}
