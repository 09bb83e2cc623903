// Package workbook reads the spreadsheets the tool consumes: the client
// report exported by the broker and the reference catalogs.
package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSheetNotFound is returned when an expected sheet is absent from a workbook.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrColumnNotFound is returned when no header cell matches in the first row.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNoReport is returned when no report workbook exists in the input folder.
	ErrNoReport = errors.New("no report workbook")
	// ErrManyReports is returned when the input folder holds more than one report workbook.
	ErrManyReports = errors.New("more than one report workbook")
)

// Workbook is an opened spreadsheet file.
type Workbook struct {
	path string
	f    *excelize.File
}

// Open opens the xlsx file at path. The caller must Close it.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %q: %w", path, err)
	}
	return &Workbook{path: path, f: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error { return w.f.Close() }

// Path returns the file the workbook was opened from.
func (w *Workbook) Path() string { return w.path }

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string { return w.f.GetSheetList() }

// Rows returns every row of the sheet with that exact name.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	found := false
	for _, s := range w.f.GetSheetList() {
		if s == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%q in %q (available: %q): %w", sheet, filepath.Base(w.path), w.Sheets(), ErrSheetNotFound)
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q in %q: %w", sheet, filepath.Base(w.path), err)
	}
	return rows, nil
}

// NormalizeSheetName lowercases name and collapses its spaces.
func NormalizeSheetName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// FindSheet returns the actual name of the sheet matching name once both are normalized.
func (w *Workbook) FindSheet(name string) (string, error) {
	target := NormalizeSheetName(name)
	for _, s := range w.f.GetSheetList() {
		if NormalizeSheetName(s) == target {
			return s, nil
		}
	}
	return "", fmt.Errorf("%q in %q (available: %q): %w", name, filepath.Base(w.path), w.Sheets(), ErrSheetNotFound)
}

// HeaderEquals matches a header cell equal to name, ignoring case and surrounding spaces.
func HeaderEquals(name string) func(string) bool {
	return func(h string) bool { return strings.EqualFold(strings.TrimSpace(h), name) }
}

// HeaderContains matches a header cell containing name, ignoring case.
func HeaderContains(name string) func(string) bool {
	name = strings.ToLower(name)
	return func(h string) bool { return strings.Contains(strings.ToLower(h), name) }
}

// Column returns the trimmed cells below the first header matching match.
// Cells are aligned with the rows: an empty cell yields "".
func (w *Workbook) Column(sheet string, match func(header string) bool) ([]string, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty: %w", sheet, ErrColumnNotFound)
	}
	col := -1
	for i, h := range rows[0] {
		if match(h) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("headers %q of sheet %q: %w", rows[0], sheet, ErrColumnNotFound)
	}
	values := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		v := ""
		if col < len(row) {
			v = strings.TrimSpace(row[col])
		}
		values = append(values, v)
	}
	return values, nil
}

// FindReport returns the single workbook matching pattern in dir. Excel
// lock files ("~$...") are ignored.
func FindReport(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("invalid report pattern %q: %w", pattern, err)
	}
	reports := matches[:0]
	for _, m := range matches {
		if !strings.HasPrefix(filepath.Base(m), "~$") {
			reports = append(reports, m)
		}
	}
	sort.Strings(reports)
	switch len(reports) {
	case 0:
		return "", fmt.Errorf("%q in %q: %w", pattern, dir, ErrNoReport)
	case 1:
		return reports[0], nil
	default:
		names := make([]string, len(reports))
		for i, r := range reports {
			names[i] = filepath.Base(r)
		}
		return "", fmt.Errorf("%q in %q, remove the extra files %q: %w", pattern, dir, names, ErrManyReports)
	}
}
