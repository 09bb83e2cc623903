package renderer

import (
	"bytes"
	"fmt"
	"path/filepath"

	md "github.com/nao1215/markdown"

	"github.com/etnz/reportprep"
)

// SummaryMarkdown renders what a run did: screening, classification, written
// files and relocated artifacts.
func SummaryMarkdown(s *reportprep.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s, %s", s.Client.Token, s.Client.Period))
	client := s.Client.DisplayName
	if client == "" {
		client = s.Client.Token
	}
	doc.PlainText(fmt.Sprintf("Client %s (from %s), run %s.", md.Bold(client), s.Source, s.RunID))
	if s.InputFile != "" {
		doc.PlainText(fmt.Sprintf("Identifier file: `%s`", filepath.Base(s.InputFile)))
	}

	doc.H2("Identifiers")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Identifiers", "Count"},
		Rows: [][]string{
			{"Read", fmt.Sprint(s.Screening.Raw)},
			{"Invalid", fmt.Sprint(len(s.Screening.Rejected))},
			{"Duplicates", fmt.Sprint(s.Screening.Duplicates)},
			{md.Bold("Valid"), md.Bold(fmt.Sprint(len(s.Screening.Valid)))},
		},
	})
	if len(s.Screening.Rejected) > 0 {
		var rejected []string
		for _, r := range s.Screening.Rejected {
			rejected = append(rejected, fmt.Sprintf("`%s`: %s", r.Raw, r.Reason))
		}
		doc.BulletList(rejected...)
	}

	if s.Mapped {
		doc.H2("Classification")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft},
			Header:    []string{"Category", "Items", "File"},
		}
		for _, w := range s.Written.Records {
			table.Rows = append(table.Rows, []string{categoryTitle(w.Kind), fmt.Sprint(w.Items), filepath.Base(w.Path)})
		}
		doc.Table(table)

		doc.H2("Term-sheets")
		doc.PlainText(fmt.Sprintf("%d copied to `%s`.", s.Written.DocumentsCopied, filepath.Base(s.Written.DocumentsDir)))
		if len(s.Written.DocumentsMissing) > 0 {
			doc.PlainText(fmt.Sprintf("%d missing:", len(s.Written.DocumentsMissing)))
			doc.BulletList(s.Written.DocumentsMissing...)
		}
	}

	var report reportprep.LifecycleReport
	report.Merge(s.InputReport)
	report.Merge(s.OutputReport)
	if len(report.Relocated) > 0 {
		doc.H2("Moved to backup")
		table := md.TableSet{
			Header: []string{"Artifact", "Reason", "Backup"},
		}
		for _, rel := range report.Relocated {
			table.Rows = append(table.Rows, []string{rel.Artifact.Name(), string(rel.Reason), filepath.Base(rel.Target)})
		}
		doc.Table(table)
	}
	if len(report.Failed) > 0 {
		doc.H2("Left in place")
		var failed []string
		for _, rel := range report.Failed {
			failed = append(failed, fmt.Sprintf("`%s` (%s): %v", rel.Artifact.Name(), rel.Reason, rel.Err))
		}
		doc.BulletList(failed...)
	}

	return doc.String()
}

func categoryTitle(k reportprep.Kind) string {
	switch k {
	case reportprep.Equities:
		return "Equities and ETF"
	case reportprep.Bonds:
		return "Bonds"
	case reportprep.Structured:
		return "Structured products"
	case reportprep.Unmatched:
		return "Unknown"
	default:
		return k.String()
	}
}
