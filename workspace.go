package reportprep

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/etnz/reportprep/date"
)

// WorkspacePaths locates every folder and file a run reads or writes.
type WorkspacePaths struct {
	InputDir  string // broker report workbooks.
	WorkDir   string // upstream records, identifier files and outputs.
	BackupDir string // relocated artifacts.

	EquitiesCatalog   string // xlsx file of equities and ETFs.
	BondsCatalog      string // xlsx file of bonds.
	StructuredCatalog string // xlsx file of structured products.
	DocumentsDir      string // term-sheets named "<ISIN><DocumentExt>".
	DocumentExt       string // term-sheet extension, with its dot.
}

// ClientRecordFile is the file holding the most recently recorded client name.
func (p WorkspacePaths) ClientRecordFile() string { return filepath.Join(p.WorkDir, "name_clients.json") }

// DatesRecordFile is the file holding the recorded report period.
func (p WorkspacePaths) DatesRecordFile() string {
	return filepath.Join(p.WorkDir, "report_dates.json")
}

// LockFile is the advisory lock of the work folder.
func (p WorkspacePaths) LockFile() string { return filepath.Join(p.WorkDir, ".reportprep.lock") }

// Kind is a category of generated artifact.
type Kind int

const (
	Input      Kind = iota // identifier file seeding the classification.
	Equities               // equities and ETFs record.
	Bonds                  // bonds record.
	Structured             // structured products record.
	Unmatched              // identifiers found in no catalog.
	Documents              // folder of copied term-sheets.
)

// OutputKinds are the kinds written by the Writer.
var OutputKinds = []Kind{Equities, Bonds, Structured, Unmatched, Documents}

// prefixes are tested in this order: "noname_isin_" must win over "isin_" and
// "stock_etf_" is not a "sp_".
var prefixes = []struct {
	kind   Kind
	prefix string
}{
	{Unmatched, "noname_isin_"},
	{Equities, "stock_etf_"},
	{Bonds, "bonds_"},
	{Structured, "sp_"},
	{Input, "isin_"},
}

const recordExt = ".json"

// Prefix returns the file name prefix of the kind.
func (k Kind) Prefix() string {
	if k == Documents {
		return Structured.Prefix()
	}
	for _, p := range prefixes {
		if p.kind == k {
			return p.prefix
		}
	}
	panic(fmt.Sprintf("unknown artifact kind %d", k))
}

// IsDir reports whether artifacts of that kind are folders.
func (k Kind) IsDir() bool { return k == Documents }

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Equities:
		return "equities"
	case Bonds:
		return "bonds"
	case Structured:
		return "structured"
	case Unmatched:
		return "unmatched"
	case Documents:
		return "documents"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ArtifactName returns the canonical name of an artifact:
// "<prefix><token>_<start>__<end>" plus ".json" for files.
func ArtifactName(k Kind, token string, p date.Period) string {
	name := k.Prefix() + token + "_" + p.Token()
	if !k.IsDir() {
		name += recordExt
	}
	return name
}

// ArtifactPath is ArtifactName in the work folder.
func (p WorkspacePaths) ArtifactPath(k Kind, c ClientContext) string {
	return filepath.Join(p.WorkDir, ArtifactName(k, c.Token, c.Period))
}

// Artifact is a generated file or folder found in the work folder.
type Artifact struct {
	Kind    Kind
	Path    string
	Token   string      // client token parsed from the name.
	Period  date.Period // period parsed from the name.
	ModTime time.Time
}

// Name returns the base name of the artifact.
func (a Artifact) Name() string { return filepath.Base(a.Path) }

// Belongs reports whether the artifact was generated for that client, whatever the period.
func (a Artifact) Belongs(c ClientContext) bool { return a.Token == c.Token }

// Current reports whether the artifact was generated for that client and period.
func (a Artifact) Current(c ClientContext) bool { return a.Token == c.Token && a.Period == c.Period }

var suffixRegex = regexp.MustCompile(`^(.+)_(\d{2}\.\d{2}\.\d{4})__(\d{2}\.\d{2}\.\d{4})$`)

// ParseArtifactName recognizes an artifact from its base name. isDir tells
// folders apart: "sp_" names a record when it is a file and the documents
// folder otherwise.
func ParseArtifactName(name string, isDir bool) (Artifact, bool) {
	stem := name
	if !isDir {
		if !strings.HasSuffix(name, recordExt) {
			return Artifact{}, false
		}
		stem = strings.TrimSuffix(name, recordExt)
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(stem, p.prefix) {
			continue
		}
		kind := p.kind
		if isDir {
			if kind != Structured {
				return Artifact{}, false
			}
			kind = Documents
		}
		m := suffixRegex.FindStringSubmatch(strings.TrimPrefix(stem, p.prefix))
		if m == nil {
			return Artifact{}, false
		}
		period, err := date.ParsePeriod(m[2], m[3])
		if err != nil {
			return Artifact{}, false
		}
		return Artifact{Kind: kind, Token: m[1], Period: period}, true
	}
	return Artifact{}, false
}

// Scan lists the artifacts of the given kinds found directly in the work
// folder, sorted by name. A missing work folder holds no artifact.
func (p WorkspacePaths) Scan(kinds ...Kind) ([]Artifact, error) {
	entries, err := os.ReadDir(p.WorkDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list work folder %q: %w", p.WorkDir, err)
	}
	wanted := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	var found []Artifact
	for _, e := range entries {
		a, ok := ParseArtifactName(e.Name(), e.IsDir())
		if !ok || !wanted[a.Kind] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("cannot stat %q: %w", e.Name(), err)
		}
		a.Path = filepath.Join(p.WorkDir, e.Name())
		a.ModTime = info.ModTime()
		found = append(found, a)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}
