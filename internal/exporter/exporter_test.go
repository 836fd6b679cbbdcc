package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fusiondash/internal/dataprocessing"
)

func sampleTable() *dataprocessing.Table {
	return dataprocessing.NewTableFromRecords(
		[]string{"State", "DPD Bucket", "Connect", "Collection Amount"},
		[][]string{
			{"MH", "0-30", "3", "12345678.5"},
			{"Tamil Nadu, South", "31-60", "", "20000000"},
		},
	)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "filtered.xlsx", FormatXLSX.FileName("filtered"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0", formatFloat(0))
	assert.Equal(t, "12345678.5", formatFloat(12345678.5))
	assert.Equal(t, "20000000", formatFloat(2e7))
	assert.Equal(t, "-0.001234", formatFloat(-0.001234))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), WriteOptions{BOMPrefix: true}))

	content := buf.Bytes()
	require.True(t, bytes.HasPrefix(content, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(content[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"State", "DPD Bucket", "Connect", "Collection Amount"},
		{"MH", "0-30", "3", "12345678.5"},
		{"Tamil Nadu, South", "31-60", "0", "20000000"},
	}, records)
}

func TestWriteCSV_WithoutBOMAndEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	empty := dataprocessing.NewTableFromRecords([]string{"State", "DPD"}, nil)
	require.NoError(t, WriteCSV(&buf, empty, WriteOptions{}))
	assert.Equal(t, "State,DPD\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamWriter_BOMFailure(t *testing.T) {
	_, err := NewStreamWriter(failingWriter{}, []string{"a"}, WriteOptions{BOMPrefix: true})
	assert.ErrorContains(t, err, "failed to write BOM")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"State", "DPD Bucket", "Connect", "Collection Amount"}, rows[0])
	assert.Equal(t, []string{"MH", "0-30", "3", "12345678.5"}, rows[1])

	cellType, err := f.GetCellType(SheetName, "D2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}

func TestWrite_Dispatch(t *testing.T) {
	var csvBuf, xlsxBuf bytes.Buffer
	require.NoError(t, Write(&csvBuf, sampleTable(), FormatCSV))
	require.NoError(t, Write(&xlsxBuf, sampleTable(), FormatXLSX))

	assert.True(t, bytes.HasPrefix(csvBuf.Bytes(), utf8BOM))
	assert.True(t, bytes.HasPrefix(xlsxBuf.Bytes(), []byte("PK")), "xlsx is a zip archive")

	assert.Error(t, Write(&bytes.Buffer{}, sampleTable(), Format("pdf")))
}
