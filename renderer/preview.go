package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/etnz/reportprep"
)

// DefaultPreviewLimit is the number of rows shown per category.
const DefaultPreviewLimit = 20

// PreviewMarkdown renders the first rows of each category of p. A limit of
// zero or less shows every row.
func PreviewMarkdown(p reportprep.Partition, limit int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	section := func(title string, header []string, rows [][]string) {
		doc.H2(title)
		if len(rows) == 0 {
			doc.PlainText("No entry.")
			return
		}
		shown := rows
		if limit > 0 && len(rows) > limit {
			shown = rows[:limit]
		}
		table := md.TableSet{Header: append([]string{"#"}, header...)}
		for i, r := range shown {
			table.Rows = append(table.Rows, append([]string{fmt.Sprint(i + 1)}, r...))
		}
		doc.Table(table)
		if len(shown) < len(rows) {
			doc.PlainText(fmt.Sprintf("%d more not shown.", len(rows)-len(shown)))
		}
	}

	var rows [][]string
	for _, e := range p.Equities {
		rows = append(rows, []string{e.ISIN, e.Ticker, e.Name, e.Type})
	}
	section("Equities and ETF", []string{"ISIN", "Ticker", "Name", "Type"}, rows)

	rows = nil
	for _, b := range p.Bonds {
		rows = append(rows, []string{b.ISIN, b.Name})
	}
	section("Bonds", []string{"ISIN", "Name"}, rows)

	rows = nil
	for _, sp := range p.Structured {
		sheet := "missing"
		if sp.DocumentPath != "" {
			sheet = "yes"
		}
		rows = append(rows, []string{sp.ISIN, sp.Type, sheet})
	}
	section("Structured products", []string{"ISIN", "Type", "Term-sheet"}, rows)

	rows = nil
	for _, isin := range p.Unmatched {
		rows = append(rows, []string{isin})
	}
	section("Unknown", []string{"ISIN"}, rows)

	return doc.String()
}
