package reportprep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up by the command line.
const DefaultConfigFile = "reportprep.yaml"

// Config is the content of the configuration file.
type Config struct {
	InputDir      string `yaml:"input_dir"`
	WorkDir       string `yaml:"work_dir"`
	BackupDir     string `yaml:"backup_dir"`
	BackupMarker  string `yaml:"backup_marker,omitempty"`
	ReportPattern string `yaml:"report_pattern,omitempty"` // glob of the report workbook in InputDir.
	Lock          bool   `yaml:"lock,omitempty"`           // use the lock file.

	Catalogs struct {
		Equities   string `yaml:"equities"`
		Bonds      string `yaml:"bonds"`
		Structured string `yaml:"structured"`
	} `yaml:"catalogs"`

	Documents struct {
		Dir string `yaml:"dir"`
		Ext string `yaml:"ext"`
	} `yaml:"documents"`
}

// DefaultConfig returns the layout the tool has always used, relative to the
// current folder.
func DefaultConfig() *Config {
	c := &Config{
		InputDir:      "Data_in",
		WorkDir:       "Data_work",
		BackupDir:     "Data_Backup",
		BackupMarker:  DefaultBackupMarker,
		ReportPattern: "отчет_*.xlsx",
	}
	c.Catalogs.Equities = filepath.Join("dictionaries", "reference_stocks_etf.xlsx")
	c.Catalogs.Bonds = filepath.Join("dictionaries", "reference_bonds.xlsx")
	c.Catalogs.Structured = filepath.Join("dictionaries", "TS", "TS.xlsx")
	c.Documents.Dir = filepath.Join("dictionaries", "TS")
	c.Documents.Ext = ".pdf"
	return c
}

// LoadConfig reads the configuration file at path. Fields absent from the
// file keep their default value; relative paths are resolved against the
// folder of the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", path, err)
	}
	c.Resolve(filepath.Dir(path))
	return c, nil
}

// Validate checks that every location is set.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"input_dir":           c.InputDir,
		"work_dir":            c.WorkDir,
		"backup_dir":          c.BackupDir,
		"catalogs.equities":   c.Catalogs.Equities,
		"catalogs.bonds":      c.Catalogs.Bonds,
		"catalogs.structured": c.Catalogs.Structured,
		"documents.dir":       c.Documents.Dir,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if filepath.Clean(c.WorkDir) == filepath.Clean(c.BackupDir) {
		return fmt.Errorf("backup_dir must differ from work_dir")
	}
	if !strings.HasPrefix(c.Documents.Ext, ".") {
		return fmt.Errorf("documents.ext must start with a dot, got %q", c.Documents.Ext)
	}
	if strings.ContainsAny(c.BackupMarker, `/\`) {
		return fmt.Errorf("backup_marker must not contain a path separator, got %q", c.BackupMarker)
	}
	return nil
}

// Resolve makes every relative path relative to dir.
func (c *Config) Resolve(dir string) {
	for _, p := range []*string{
		&c.InputDir, &c.WorkDir, &c.BackupDir,
		&c.Catalogs.Equities, &c.Catalogs.Bonds, &c.Catalogs.Structured,
		&c.Documents.Dir,
	} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Paths returns the workspace described by c.
func (c *Config) Paths() WorkspacePaths {
	return WorkspacePaths{
		InputDir:          c.InputDir,
		WorkDir:           c.WorkDir,
		BackupDir:         c.BackupDir,
		EquitiesCatalog:   c.Catalogs.Equities,
		BondsCatalog:      c.Catalogs.Bonds,
		StructuredCatalog: c.Catalogs.Structured,
		DocumentsDir:      c.Documents.Dir,
		DocumentExt:       c.Documents.Ext,
	}
}

// Pipeline returns a pipeline working on c.
func (c *Config) Pipeline() *Pipeline {
	return &Pipeline{Paths: c.Paths(), Lock: c.Lock, Marker: c.BackupMarker}
}
