package renderer

import (
	"bytes"

	md "github.com/nao1215/markdown"

	"github.com/etnz/reportprep"
)

// CheckMarkdown renders the validation status of each raw identifier.
func CheckMarkdown(raw []string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	table := md.TableSet{Header: []string{"Identifier", "Status"}}
	for _, r := range raw {
		status := "valid"
		if err := reportprep.ValidateISIN(reportprep.NormalizeISIN(r)); err != nil {
			status = err.Error()
		}
		table.Rows = append(table.Rows, []string{reportprep.NormalizeISIN(r), status})
	}
	doc.Table(table)
	return doc.String()
}
