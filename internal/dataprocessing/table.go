package dataprocessing

import (
	"strconv"
)

// Value is a single cell: either text or a number.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// TextValue returns a text cell.
func TextValue(s string) Value {
	return Value{Text: s}
}

// NumberValue returns a numeric cell.
func NumberValue(f float64) Value {
	return Value{Number: f, Numeric: true}
}

// String returns the cell compared as text.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Float returns the numeric value of the cell. Text cells are 0.
func (v Value) Float() float64 {
	if v.Numeric {
		return v.Number
	}
	return 0
}

// Interface returns the cell as a JSON-friendly value.
func (v Value) Interface() any {
	if v.Numeric {
		return v.Number
	}
	return v.Text
}

// Table is an ordered, read-only set of rows with named columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable builds a Table from column names and rows. Rows shorter than the
// header are padded with blank text cells, longer rows are truncated.
func NewTable(columns []string, rows [][]Value) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	out := make([][]Value, len(rows))
	for i, r := range rows {
		row := make([]Value, len(cols))
		copy(row, r)
		out[i] = row
	}

	return &Table{columns: cols, index: index, rows: out}
}

// derive returns a Table over the same columns with the given rows. The row
// slices are shared, never written.
func (t *Table) derive(rows [][]Value) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// HasColumn reports whether the table has a column with this exact name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) (Value, bool) {
	idx, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Value{}, false
	}
	return t.rows[i][idx], true
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for j, c := range t.columns {
		rec[c] = t.rows[i][j].Interface()
	}
	return rec
}

// Floats returns the numeric values of a column, or false if it is absent.
func (t *Table) Floats(column string) ([]float64, bool) {
	idx, ok := t.index[column]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx].Float()
	}
	return out, true
}

// Strings returns a column compared as text, or false if it is absent.
func (t *Table) Strings(column string) ([]string, bool) {
	idx, ok := t.index[column]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx].String()
	}
	return out, true
}

// Where returns the rows for which keep reports true, in order.
func (t *Table) Where(keep func(row int) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for i, r := range t.rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Slice returns at most limit rows starting at offset. A limit of 0 means no limit.
func (t *Table) Slice(offset, limit int) *Table {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.rows) {
		offset = len(t.rows)
	}
	end := len(t.rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return t.derive(t.rows[offset:end:end])
}
