package workbook

import (
	"errors"
	"fmt"
)

// Layout of the portfolio report exported by the broker.
const (
	ReportPattern  = "отчет_*.xlsx"
	PortfolioSheet = "портфель"
	ISINHeader     = "ISIN"
	OwnerHeader    = "владелец счета"
)

// ErrNoOwner is returned when the account owner cell is empty.
var ErrNoOwner = errors.New("account owner is empty")

// Identifiers returns the non empty cells of the ISIN column of the portfolio sheet, in sheet order.
func (w *Workbook) Identifiers() ([]string, error) {
	sheet, err := w.FindSheet(PortfolioSheet)
	if err != nil {
		return nil, err
	}
	cells, err := w.Column(sheet, HeaderEquals(ISINHeader))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			ids = append(ids, c)
		}
	}
	return ids, nil
}

// Owner returns the account owner written in the first data row of the portfolio sheet.
func (w *Workbook) Owner() (string, error) {
	sheet, err := w.FindSheet(PortfolioSheet)
	if err != nil {
		return "", err
	}
	cells, err := w.Column(sheet, HeaderContains(OwnerHeader))
	if err != nil {
		return "", err
	}
	if len(cells) == 0 || cells[0] == "" {
		return "", fmt.Errorf("sheet %q of %q: %w", sheet, w.path, ErrNoOwner)
	}
	return cells[0], nil
}
