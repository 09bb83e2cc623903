package reportprep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/reportprep/workbook"
	"go.uber.org/zap"
)

// StructuredType is the type written for every structured product.
const StructuredType = "STRUCTURED_PRODUCT"

// Sheet names of the reference catalogs.
const (
	EquitiesSheet   = "акции_etf"
	BondsSheet      = "bonds"
	StructuredSheet = "TS"
)

// equitiesSheetAliases are accepted when EquitiesSheet is absent; the
// catalog has long been maintained with a cyrillic "ф".
var equitiesSheetAliases = []string{"акции_etф"}

// Equity is an entry of the equities and ETFs catalog.
type Equity struct {
	ISIN   string `json:"isin"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// Bond is an entry of the bonds catalog.
type Bond struct {
	ISIN string `json:"isin"`
	Name string `json:"name"`
}

// StructuredProduct is an entry of the structured products catalog.
// DocumentPath is empty when the term-sheet is not on disk.
type StructuredProduct struct {
	ISIN         string `json:"isin"`
	Type         string `json:"type"`
	DocumentPath string `json:"document_path,omitempty"`
}

// Catalogs are the three reference lookup tables, keyed by normalized ISIN.
type Catalogs struct {
	Equities   map[string]Equity
	Bonds      map[string]Bond
	Structured map[string]StructuredProduct
}

// Sheets is a tabular source organized in named sheets.
// workbook.Workbook implements it.
type Sheets interface {
	Rows(sheet string) ([][]string, error)
}

// rows reads the first available sheet among names, without its header row.
func rows(s Sheets, names ...string) ([][]string, error) {
	var err error
	for _, name := range names {
		var all [][]string
		all, err = s.Rows(name)
		if errors.Is(err, workbook.ErrSheetNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, nil
		}
		return all[1:], nil
	}
	return nil, fmt.Errorf("%w %q: %v", ErrMissingSheet, names[0], err)
}

// cell returns the trimmed i-th cell of row, or "" if the row is shorter.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// LoadEquities reads the equities and ETFs catalog: ISIN, ticker, name, type.
func LoadEquities(s Sheets) (map[string]Equity, error) {
	rs, err := rows(s, append([]string{EquitiesSheet}, equitiesSheetAliases...)...)
	if err != nil {
		return nil, err
	}
	ref := make(map[string]Equity, len(rs))
	for _, row := range rs {
		isin := NormalizeISIN(cell(row, 0))
		if isin == "" {
			continue
		}
		ref[isin] = Equity{ISIN: isin, Ticker: cell(row, 1), Name: cell(row, 2), Type: cell(row, 3)}
	}
	return ref, nil
}

// LoadBonds reads the bonds catalog: ISIN, name.
func LoadBonds(s Sheets) (map[string]Bond, error) {
	rs, err := rows(s, BondsSheet)
	if err != nil {
		return nil, err
	}
	ref := make(map[string]Bond, len(rs))
	for _, row := range rs {
		isin := NormalizeISIN(cell(row, 0))
		if isin == "" {
			continue
		}
		ref[isin] = Bond{ISIN: isin, Name: cell(row, 1)}
	}
	return ref, nil
}

// LoadStructured reads the structured products catalog: row number, ISIN,
// link. The term-sheet "<docDir>/<ISIN><ext>" is recorded only if it exists.
func LoadStructured(s Sheets, docDir, ext string) (map[string]StructuredProduct, error) {
	rs, err := rows(s, StructuredSheet)
	if err != nil {
		return nil, err
	}
	ref := make(map[string]StructuredProduct, len(rs))
	for _, row := range rs {
		isin := NormalizeISIN(cell(row, 1))
		if isin == "" {
			continue
		}
		sp := StructuredProduct{ISIN: isin, Type: StructuredType}
		doc := filepath.Join(docDir, isin+ext)
		if info, err := os.Stat(doc); err == nil && info.Mode().IsRegular() {
			sp.DocumentPath = doc
		}
		ref[isin] = sp
	}
	return ref, nil
}

// LoadCatalogs opens and loads the three catalogs located by paths.
func LoadCatalogs(paths WorkspacePaths, logger *zap.Logger) (*Catalogs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := new(Catalogs)

	load := func(path string, fn func(Sheets) error) error {
		wb, err := workbook.Open(path)
		if err != nil {
			return err
		}
		defer wb.Close()
		if err := fn(wb); err != nil {
			return fmt.Errorf("catalog %q: %w", path, err)
		}
		return nil
	}

	err := load(paths.EquitiesCatalog, func(s Sheets) (err error) {
		c.Equities, err = LoadEquities(s)
		return
	})
	if err != nil {
		return nil, err
	}
	err = load(paths.BondsCatalog, func(s Sheets) (err error) {
		c.Bonds, err = LoadBonds(s)
		return
	})
	if err != nil {
		return nil, err
	}
	err = load(paths.StructuredCatalog, func(s Sheets) (err error) {
		c.Structured, err = LoadStructured(s, paths.DocumentsDir, paths.DocumentExt)
		return
	})
	if err != nil {
		return nil, err
	}

	withDoc := 0
	for _, sp := range c.Structured {
		if sp.DocumentPath != "" {
			withDoc++
		}
	}
	logger.Info("catalogs loaded",
		zap.Int("equities", len(c.Equities)),
		zap.Int("bonds", len(c.Bonds)),
		zap.Int("structured", len(c.Structured)),
		zap.Int("term_sheets", withDoc),
	)
	return c, nil
}
