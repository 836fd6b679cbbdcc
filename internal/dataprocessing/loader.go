package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "fusiondash/internal/errors"
)

// ErrUnparseable is wrapped by every error caused by a file that cannot be read as a table.
var ErrUnparseable = errors.New("spreadsheet could not be parsed")

// cancelCheckInterval is how many rows are built between context checks.
const cancelCheckInterval = 1024

// LoaderConfig holds configuration options for the Loader.
type LoaderConfig struct {
	// Sheet overrides the sheet to read. Empty means the first sheet.
	Sheet string
}

// Loader reads allocation spreadsheets into Tables.
type Loader struct {
	logger *slog.Logger
	sheet  string
}

// NewLoader creates a Loader. A nil logger uses slog.Default.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
		sheet:  cfg.Sheet,
	}
}

// Load reads the file at path. CSV files are read as text, everything else
// is opened as a workbook. The caller is expected to have checked that the
// file exists.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	start := time.Now()

	var (
		table *Table
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		table, err = l.loadCSV(ctx, path)
	} else {
		table, err = l.loadWorkbook(ctx, path)
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to load spreadsheet",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logger.InfoContext(ctx, "Spreadsheet loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.NumColumns()),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

func (l *Loader) loadWorkbook(ctx context.Context, path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, unparseable(path, "open workbook", err)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, unparseable(path, "workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	// Formatted values keep text columns as displayed; raw values keep number
	// formats such as thousands separators out of numeric parsing.
	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, unparseable(path, fmt.Sprintf("read sheet %q", sheet), err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, unparseable(path, fmt.Sprintf("read sheet %q", sheet), err)
	}

	if len(display) == 0 {
		return nil, unparseable(path, fmt.Sprintf("sheet %q has no header row", sheet), nil)
	}

	l.logger.DebugContext(ctx, "Read sheet",
		slog.String("sheet", sheet),
		slog.Int("grid_rows", len(display)))

	return buildTable(ctx, display, raw)
}

func (l *Loader) loadCSV(ctx context.Context, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, unparseable(path, "open csv", err)
	}
	defer file.Close()

	grid, err := readCSV(file)
	if err != nil {
		return nil, unparseable(path, "read csv", err)
	}
	if len(grid) == 0 {
		return nil, unparseable(path, "csv has no header row", nil)
	}
	return buildTable(ctx, grid, nil)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(grid) > 0 && len(grid[0]) > 0 {
		grid[0][0] = strings.TrimPrefix(grid[0][0], "\ufeff")
	}
	return grid, nil
}

// NewTableFromRecords builds a Table from a header row and text records,
// applying the same header normalization and numeric coercion as Load.
func NewTableFromRecords(header []string, records [][]string) *Table {
	grid := make([][]string, 0, len(records)+1)
	grid = append(grid, header)
	grid = append(grid, records...)
	t, _ := buildTable(context.Background(), grid, nil)
	return t
}

// buildTable turns a grid whose first row is the header into a Table. raw,
// when present, supplies the unformatted cell values used for numeric columns.
func buildTable(ctx context.Context, grid, raw [][]string) (*Table, error) {
	if len(grid) == 0 {
		return NewTable(nil, nil), nil
	}

	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}
	columns := normalizeHeader(grid[0], width)

	numeric := make([]bool, width)
	for i, c := range columns {
		numeric[i] = isNumericColumn(c)
	}

	rows := make([][]Value, 0, len(grid)-1)
	for r := 1; r < len(grid); r++ {
		if r%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlankRow(grid[r]) {
			continue
		}

		row := make([]Value, width)
		for c := 0; c < width; c++ {
			cell := cellAt(grid, r, c)
			if numeric[c] {
				if raw != nil {
					cell = cellAt(raw, r, c)
				}
				row[c] = NumberValue(ToNumber(cell))
				continue
			}
			row[c] = TextValue(cell)
		}
		rows = append(rows, row)
	}

	return NewTable(columns, rows), nil
}

// normalizeHeader trims names, names blank headers by position and suffixes
// duplicates with .1, .2 and so on.
func normalizeHeader(header []string, width int) []string {
	columns := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
	}
	return columns
}

func cellAt(grid [][]string, r, c int) string {
	if r >= len(grid) || c >= len(grid[r]) {
		return ""
	}
	return grid[r][c]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func unparseable(path, op string, cause error) error {
	wrapped := ErrUnparseable
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", ErrUnparseable, cause)
	}
	return apperrors.NewParsingError(op, wrapped).WithContext("path", path)
}
