package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusiondash/internal/config"
	"fusiondash/internal/shared/testutil"
	"fusiondash/pkg/contracts/domain"
)

func runReport(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Text(t *testing.T) {
	path := testutil.WriteStandardAllocation(t)

	code, out, errOut := runReport(t, "-file", path, "-region", "MH")

	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Fusion Finance Recovery Dashboard")
	assert.Regexp(t, `No of Loans\s+15\n`, out)
	assert.Regexp(t, `Collection \(Cr\)\s+3\.23\n`, out)
	assert.Regexp(t, `MH\s+32345678\s+80000000\s+3\.23\s+8\.00\n`, out)
	assert.Contains(t, out, "Total Records: 2")
}

func TestRun_JSON(t *testing.T) {
	path := testutil.WriteStandardAllocation(t)

	code, out, _ := runReport(t, "-file", path, "-connect", "Not Connected", "-format", "json", "-rows", "5")
	require.Equal(t, exitOK, code)

	var view domain.DashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 1, view.TotalRecords)
	assert.Equal(t, int64(5), view.KPIs.Loans)
	assert.Equal(t, 2.0, view.KPIs.CollectionCr)
	require.Len(t, view.Table.Rows, 1)
	assert.Equal(t, "L002", view.Table.Rows[0]["Loan ID"])
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runReport(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Fusion Collections Dashboard v")
}

func TestRun_DefaultFileIsBesideExecutable(t *testing.T) {
	want, err := config.DefaultDataFilePath()
	require.NoError(t, err)

	// A workbook in the working directory must not be picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	src := testutil.WriteStandardAllocation(t)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultDataFile), data, 0o644))
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	code, out, errOut := runReport(t, "-v")

	assert.Equal(t, exitData, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Excel file not found. Check file name & location.")
	assert.Contains(t, errOut, want)
}

func TestRun_Errors(t *testing.T) {
	noState := testutil.WriteAllocationWorkbook(t, []string{"Area", "Days"}, [][]interface{}{{"MH", "0-30"}})

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing file", []string{"-file", filepath.Join(t.TempDir(), "nope.xlsx")}, exitData, "Excel file not found. Check file name & location."},
		{"unresolved columns", []string{"-file", noState}, exitData, "State / DPD column not found in Excel"},
		{"bad connect", []string{"-file", noState, "-connect", "Maybe"}, exitUsage, "invalid selection"},
		{"bad format", []string{"-format", "yaml"}, exitUsage, `unknown format "yaml"`},
		{"unknown flag", []string{"-bogus"}, exitUsage, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runReport(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.wantErr)
		})
	}
}
