package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fusiondash/internal/dataprocessing"
)

// SheetName is the name of the single sheet in exported workbooks.
const SheetName = "Filtered Data"

// WriteXLSX writes the table as a one-sheet workbook. Numeric cells stay numbers.
func WriteXLSX(w io.Writer, t *dataprocessing.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := t.Row(i)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v.Interface()
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Write dispatches on format. CSV output carries a BOM so Excel detects UTF-8.
func Write(w io.Writer, t *dataprocessing.Table, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t, WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
