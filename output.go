package reportprep

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/etnz/reportprep/date"
)

// Record is the content of an output record file.
type Record[T any] struct {
	Client string      `json:"client"`
	Period date.Period `json:"period"`
	Items  []T         `json:"items"`
}

// Written is one output record file.
type Written struct {
	Kind  Kind
	Path  string
	Items int
}

// WriteResult sums up what Write produced.
type WriteResult struct {
	Records          []Written
	DocumentsDir     string
	DocumentsCopied  int
	DocumentsMissing []string // structured products without term-sheet.
}

// Items returns the number of items written for that kind, 0 if no file was written.
func (r WriteResult) Items(k Kind) int {
	for _, w := range r.Records {
		if w.Kind == k {
			return w.Items
		}
	}
	return 0
}

// Writer writes the outputs of a classification in the work folder.
type Writer struct {
	paths  WorkspacePaths
	logger *zap.Logger
}

// NewWriter returns a Writer for paths.
func NewWriter(paths WorkspacePaths, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{paths: paths, logger: logger}
}

// Write writes the equities, bonds and structured products records, the
// unmatched record if any identifier is unmatched, and copies the term-sheets
// of the structured products into the documents folder.
//
// Targets are expected to be free: the Lifecycle prepares them.
func (w *Writer) Write(c ClientContext, p Partition) (WriteResult, error) {
	var res WriteResult

	write := func(k Kind, items any, n int) error {
		path := w.paths.ArtifactPath(k, c)
		if err := WriteJSON(path, items); err != nil {
			return err
		}
		res.Records = append(res.Records, Written{Kind: k, Path: path, Items: n})
		w.logger.Debug("record written", zap.String("file", filepath.Base(path)), zap.Int("items", n))
		return nil
	}

	if err := write(Equities, record(c, p.Equities), len(p.Equities)); err != nil {
		return res, err
	}
	if err := write(Bonds, record(c, p.Bonds), len(p.Bonds)); err != nil {
		return res, err
	}
	if err := write(Structured, record(c, p.Structured), len(p.Structured)); err != nil {
		return res, err
	}
	if len(p.Unmatched) > 0 {
		if err := write(Unmatched, record(c, p.Unmatched), len(p.Unmatched)); err != nil {
			return res, err
		}
	}

	res.DocumentsDir = w.paths.ArtifactPath(Documents, c)
	if err := os.MkdirAll(res.DocumentsDir, 0755); err != nil {
		return res, fmt.Errorf("cannot create documents folder: %w", err)
	}
	for _, sp := range p.Structured {
		if sp.DocumentPath == "" {
			res.DocumentsMissing = append(res.DocumentsMissing, sp.ISIN)
			continue
		}
		if _, err := os.Stat(sp.DocumentPath); errors.Is(err, fs.ErrNotExist) {
			// gone since the catalogs were loaded.
			res.DocumentsMissing = append(res.DocumentsMissing, sp.ISIN)
			continue
		}
		dst := filepath.Join(res.DocumentsDir, sp.ISIN+filepath.Ext(sp.DocumentPath))
		if err := copyFile(sp.DocumentPath, dst); err != nil {
			return res, err
		}
		res.DocumentsCopied++
	}
	if len(res.DocumentsMissing) > 0 {
		w.logger.Warn("term-sheets missing", zap.Strings("isin", res.DocumentsMissing))
	}
	w.logger.Info("outputs written",
		zap.Int("records", len(res.Records)),
		zap.Int("documents_copied", res.DocumentsCopied),
		zap.Int("documents_missing", len(res.DocumentsMissing)),
	)
	return res, nil
}

func record[T any](c ClientContext, items []T) Record[T] {
	if items == nil {
		items = []T{}
	}
	return Record[T]{Client: c.DisplayName, Period: c.Period, Items: items}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cannot copy %q: %w", src, err)
	}
	return out.Close()
}
