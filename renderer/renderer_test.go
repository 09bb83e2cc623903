package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/etnz/reportprep"
	"github.com/etnz/reportprep/date"
)

// outline parses markdown and returns its headings and its number of tables.
func outline(t *testing.T, markdown string) (headings []string, tables int) {
	t.Helper()
	src := []byte(markdown)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			headings = append(headings, strings.Repeat("#", n.Level)+" "+plain(n, src))
			return ast.WalkSkipChildren, nil
		case *extast.Table:
			tables++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return headings, tables
}

// plain concatenates the text segments below n.
func plain(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func testClient(t *testing.T) reportprep.ClientContext {
	t.Helper()
	p, err := date.ParsePeriod("01.06.2024", "30.06.2024")
	if err != nil {
		t.Fatal(err)
	}
	c, err := reportprep.NewClientContext("Ivanov Ivan Ivanovich", p)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSummaryMarkdown(t *testing.T) {
	c := testClient(t)
	s := &reportprep.Summary{
		RunID:     "run-1",
		Client:    c,
		Source:    reportprep.SourceRecord,
		InputFile: "/work/isin_Ivanov I.I._01.06.2024__30.06.2024.json",
		Screening: reportprep.Screen([]string{"US0378331005", "US0378331005", "INVALID000000"}),
		Mapped:    true,
		Written: reportprep.WriteResult{
			Records: []reportprep.Written{
				{Kind: reportprep.Equities, Path: "/work/stock_etf_Ivanov I.I._01.06.2024__30.06.2024.json", Items: 1},
				{Kind: reportprep.Bonds, Path: "/work/bonds_Ivanov I.I._01.06.2024__30.06.2024.json"},
				{Kind: reportprep.Structured, Path: "/work/sp_Ivanov I.I._01.06.2024__30.06.2024.json"},
			},
			DocumentsDir: "/work/sp_Ivanov I.I._01.06.2024__30.06.2024",
		},
		OutputReport: reportprep.LifecycleReport{
			Relocated: []reportprep.Relocation{{
				Artifact: reportprep.Artifact{Kind: reportprep.Bonds, Path: "/work/bonds_Petrov P.P._01.06.2024__30.06.2024.json"},
				Reason:   reportprep.Foreign,
				Target:   "/backup/bonds_Petrov P.P._01.06.2024__30.06.2024_резерв_20240701_120000.json",
			}},
			Failed: []reportprep.Relocation{{
				Artifact: reportprep.Artifact{Kind: reportprep.Equities, Path: "/work/stock_etf_Petrov P.P._01.06.2024__30.06.2024.json"},
				Reason:   reportprep.Foreign,
				Err:      errors.New("permission denied"),
			}},
		},
	}

	got := SummaryMarkdown(s)
	headings, tables := outline(t, got)
	want := []string{
		"# Ivanov I.I., 01.06.2024..30.06.2024",
		"## Identifiers",
		"## Classification",
		"## Term-sheets",
		"## Moved to backup",
		"## Left in place",
	}
	if diff := cmp.Diff(want, headings); diff != "" {
		t.Errorf("SummaryMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if tables != 3 {
		t.Errorf("SummaryMarkdown() has %d tables, want 3", tables)
	}
	for _, needle := range []string{"client record", "INVALID000000", "bonds_Petrov P.P._01.06.2024__30.06.2024_резерв_20240701_120000.json", "permission denied"} {
		if !strings.Contains(got, needle) {
			t.Errorf("SummaryMarkdown() does not mention %q:\n%s", needle, got)
		}
	}
}

func TestSummaryMarkdownExtractOnly(t *testing.T) {
	s := &reportprep.Summary{
		Client:    testClient(t),
		Source:    reportprep.SourceRequest,
		Screening: reportprep.Screen([]string{"US0378331005"}),
	}
	headings, tables := outline(t, SummaryMarkdown(s))
	if diff := cmp.Diff([]string{"# Ivanov I.I., 01.06.2024..30.06.2024", "## Identifiers"}, headings); diff != "" {
		t.Errorf("SummaryMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if tables != 1 {
		t.Errorf("SummaryMarkdown() has %d tables, want 1", tables)
	}
}

func TestSummaryMarkdownWithoutDisplayName(t *testing.T) {
	c := testClient(t)
	c.DisplayName = ""
	got := SummaryMarkdown(&reportprep.Summary{Client: c, Source: reportprep.SourceLatest})
	if !strings.Contains(got, "**Ivanov I.I.** (from latest modified)") {
		t.Errorf("SummaryMarkdown() does not fall back on the client token:\n%s", got)
	}
}

func TestPreviewMarkdown(t *testing.T) {
	p := reportprep.Partition{
		Equities: []reportprep.Equity{
			{ISIN: "US0378331005", Ticker: "AAPL", Name: "Apple Inc.", Type: "Акция"},
			{ISIN: "IE00B4L5Y983", Ticker: "IWDA", Name: "iShares Core MSCI World", Type: "ETF"},
			{ISIN: "DE000BAY0017", Ticker: "BAYN", Name: "Bayer AG", Type: "Акция"},
		},
		Structured: []reportprep.StructuredProduct{{ISIN: "CH1107979838", Type: reportprep.StructuredType}},
		Unmatched:  []string{"US5949181045"},
	}
	got := PreviewMarkdown(p, 2)
	headings, tables := outline(t, got)
	want := []string{"## Equities and ETF", "## Bonds", "## Structured products", "## Unknown"}
	if diff := cmp.Diff(want, headings); diff != "" {
		t.Errorf("PreviewMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if tables != 3 {
		t.Errorf("PreviewMarkdown() has %d tables, want 3", tables)
	}
	if strings.Contains(got, "DE000BAY0017") || !strings.Contains(got, "1 more not shown.") {
		t.Errorf("PreviewMarkdown() does not honor the limit:\n%s", got)
	}
	if !strings.Contains(got, "missing") {
		t.Errorf("PreviewMarkdown() does not report the missing term-sheet:\n%s", got)
	}
}

func TestCheckMarkdown(t *testing.T) {
	got := CheckMarkdown([]string{" us0378331005", "US0378331006"})
	if _, tables := outline(t, got); tables != 1 {
		t.Errorf("CheckMarkdown() has %d tables, want 1", tables)
	}
	if !strings.Contains(got, "US0378331005") || !strings.Contains(got, "valid") || !strings.Contains(got, "check digit") {
		t.Errorf("CheckMarkdown() = \n%s", got)
	}
}
