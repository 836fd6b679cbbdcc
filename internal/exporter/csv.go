package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"fusiondash/internal/dataprocessing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// StreamWriter writes CSV records one at a time
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the header row to w.
func NewStreamWriter(w io.Writer, headers []string, opts WriteOptions) (*StreamWriter, error) {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes buffered records
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteCSV writes the table with its header row. Numbers are printed in
// their shortest exact form.
func WriteCSV(w io.Writer, t *dataprocessing.Table, opts WriteOptions) error {
	stream, err := NewStreamWriter(w, t.Columns(), opts)
	if err != nil {
		return err
	}

	record := make([]string, t.NumColumns())
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Row(i) {
			if v.Numeric {
				record[j] = formatFloat(v.Number)
			} else {
				record[j] = v.Text
			}
		}
		if err := stream.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}
