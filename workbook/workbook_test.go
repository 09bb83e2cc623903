package workbook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

// writeXLSX creates an xlsx file with one sheet per entry of sheets, in the given order.
func writeXLSX(t *testing.T, path string, order []string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "отчет_июнь.xlsx")
	writeXLSX(t, path, []string{"Сводка", "ПОРТФЕЛЬ"}, map[string][][]any{
		"Сводка": {{"nothing"}},
		"ПОРТФЕЛЬ": {
			{"Счет", "Владелец счета клиента", "isin "},
			{"A-1", "Ivanov Ivan Ivanovich", "US0378331005"},
			{"A-1", "", ""},
			{"A-1", "", " DE000BAY0017 "},
		},
	})

	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ids, err := w.Identifiers()
	if err != nil {
		t.Fatalf("Identifiers() error: %v", err)
	}
	if diff := cmp.Diff([]string{"US0378331005", "DE000BAY0017"}, ids); diff != "" {
		t.Errorf("Identifiers() mismatch (-want +got):\n%s", diff)
	}

	owner, err := w.Owner()
	if err != nil {
		t.Fatalf("Owner() error: %v", err)
	}
	if owner != "Ivanov Ivan Ivanovich" {
		t.Errorf("Owner() = %q", owner)
	}
}

func TestMissingSheetAndColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeXLSX(t, path, []string{"bonds"}, map[string][][]any{
		"bonds": {{"Code", "Name"}, {"XS2314659447", "Bond"}},
	})
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.Rows("TS"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Rows(TS) error = %v, want ErrSheetNotFound", err)
	}
	if _, err := w.Identifiers(); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Identifiers() error = %v, want ErrSheetNotFound", err)
	}
	if _, err := w.Column("bonds", HeaderEquals("ISIN")); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Column() error = %v, want ErrColumnNotFound", err)
	}
}

func TestFindReport(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindReport(dir, ReportPattern); !errors.Is(err, ErrNoReport) {
		t.Errorf("FindReport() on empty dir error = %v, want ErrNoReport", err)
	}

	touch := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	touch("отчет_1.xlsx")
	touch("~$отчет_1.xlsx")
	touch("notes.xlsx")

	got, err := FindReport(dir, ReportPattern)
	if err != nil {
		t.Fatalf("FindReport() error: %v", err)
	}
	if filepath.Base(got) != "отчет_1.xlsx" {
		t.Errorf("FindReport() = %q", got)
	}

	touch("отчет_2.xlsx")
	if _, err := FindReport(dir, ReportPattern); !errors.Is(err, ErrManyReports) {
		t.Errorf("FindReport() error = %v, want ErrManyReports", err)
	}
}

func TestNormalizeSheetName(t *testing.T) {
	if got := NormalizeSheetName("  Мой   ПОРТФЕЛЬ "); got != "мой портфель" {
		t.Errorf("NormalizeSheetName() = %q", got)
	}
}
