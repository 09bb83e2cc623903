package reportprep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBackupMarker is inserted in every backup name, between the original stem and the timestamp.
const DefaultBackupMarker = "резерв"

const backupTimeFormat = "20060102_150405"

// Reason tells why an artifact was relocated.
type Reason string

const (
	Superseded Reason = "superseded" // same client and period as the run.
	Stale      Reason = "stale"      // same client, another period.
	Foreign    Reason = "foreign"    // another client.
)

// reasonFor classifies a relative to the client of the run.
func reasonFor(a Artifact, c ClientContext) Reason {
	switch {
	case a.Current(c):
		return Superseded
	case a.Belongs(c):
		return Stale
	default:
		return Foreign
	}
}

// Relocation is one artifact moved (or not, if Err is set) to the backup folder.
type Relocation struct {
	Artifact Artifact
	Reason   Reason
	Target   string
	Err      error
}

// LifecycleReport lists the relocations of a preparation step.
type LifecycleReport struct {
	Relocated []Relocation
	Failed    []Relocation // artifacts left in place.
}

func (r *LifecycleReport) add(rel Relocation) {
	if rel.Err != nil {
		r.Failed = append(r.Failed, rel)
		return
	}
	r.Relocated = append(r.Relocated, rel)
}

// Merge appends o to r.
func (r *LifecycleReport) Merge(o LifecycleReport) {
	r.Relocated = append(r.Relocated, o.Relocated...)
	r.Failed = append(r.Failed, o.Failed...)
}

// Count returns the number of successful relocations for that reason.
func (r LifecycleReport) Count(reason Reason) int {
	n := 0
	for _, rel := range r.Relocated {
		if rel.Reason == reason {
			n++
		}
	}
	return n
}

// Lifecycle keeps a single current set of artifacts in the work folder. It
// never deletes: displaced artifacts are renamed into the backup folder.
type Lifecycle struct {
	paths  WorkspacePaths
	marker string
	now    func() time.Time
	logger *zap.Logger
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithMarker sets the backup marker, DefaultBackupMarker otherwise.
func WithMarker(marker string) LifecycleOption {
	return func(m *Lifecycle) {
		if marker != "" {
			m.marker = marker
		}
	}
}

// WithClock sets the clock used to timestamp backups.
func WithClock(now func() time.Time) LifecycleOption {
	return func(m *Lifecycle) { m.now = now }
}

// WithLogger sets the logger reporting every relocation.
func WithLogger(logger *zap.Logger) LifecycleOption {
	return func(m *Lifecycle) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewLifecycle returns a Lifecycle working on paths.
func NewLifecycle(paths WorkspacePaths, opts ...LifecycleOption) *Lifecycle {
	m := &Lifecycle{
		paths:  paths,
		marker: DefaultBackupMarker,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PrepareOutputs relocates every output artifact before the outputs of c are
// written: the ones a previous identical run left (superseded), the ones of
// other periods of the same client (stale) and the ones of other clients
// (foreign).
//
// Failing to relocate a stale or foreign artifact only leaves it in place and
// is listed in the report. Failing to relocate a superseded one is an error:
// nothing must be written over it.
func (m *Lifecycle) PrepareOutputs(c ClientContext) (LifecycleReport, error) {
	return m.prepare(c, OutputKinds, false)
}

// PrepareInput applies the same rule to identifier files. With keepCurrent,
// the identifier file of c itself stays in place.
func (m *Lifecycle) PrepareInput(c ClientContext, keepCurrent bool) (LifecycleReport, error) {
	return m.prepare(c, []Kind{Input}, keepCurrent)
}

func (m *Lifecycle) prepare(c ClientContext, kinds []Kind, keepCurrent bool) (LifecycleReport, error) {
	var report LifecycleReport
	handled := make(map[string]bool)

	// Canonical targets first: a previous identical run must never be overwritten.
	for _, k := range kinds {
		target := m.paths.ArtifactPath(k, c)
		info, err := os.Lstat(target)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("cannot stat %q: %w", target, err)
		}
		handled[target] = true
		if keepCurrent {
			continue
		}
		a := Artifact{Kind: k, Path: target, Token: c.Token, Period: c.Period, ModTime: info.ModTime()}
		rel := m.relocate(a, Superseded)
		report.add(rel)
		if rel.Err != nil {
			// the new artifact would overwrite it.
			return report, fmt.Errorf("%q cannot be replaced: %w", a.Name(), rel.Err)
		}
	}

	found, err := m.paths.Scan(kinds...)
	if err != nil {
		return report, err
	}
	for _, a := range found {
		if handled[a.Path] {
			continue
		}
		report.add(m.relocate(a, reasonFor(a, c)))
	}
	return report, nil
}

// BackupName returns the name of a backup: "<stem>_<marker>_<YYYYMMDD_HHMMSS><ext>".
// Folders keep their whole name as stem.
func BackupName(name string, isDir bool, marker string, at time.Time) string {
	stem, ext := name, ""
	if !isDir {
		ext = filepath.Ext(name)
		stem = strings.TrimSuffix(name, ext)
	}
	return stem + "_" + marker + "_" + at.Format(backupTimeFormat) + ext
}

// backupTarget returns a path in the backup folder that does not exist yet.
// A numeric suffix is added when two relocations share the same second.
func (m *Lifecycle) backupTarget(a Artifact, at time.Time) (string, error) {
	name := BackupName(a.Name(), a.Kind.IsDir(), m.marker, at)
	target := filepath.Join(m.paths.BackupDir, name)
	for n := 2; ; n++ {
		_, err := os.Lstat(target)
		if errors.Is(err, fs.ErrNotExist) {
			return target, nil
		}
		if err != nil {
			return "", err
		}
		ext := filepath.Ext(name)
		if a.Kind.IsDir() {
			ext = ""
		}
		target = filepath.Join(m.paths.BackupDir, fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext))
	}
}

// relocate moves a into the backup folder. Failures are logged and returned
// in the Relocation: the artifact stays where it was.
func (m *Lifecycle) relocate(a Artifact, reason Reason) Relocation {
	rel := Relocation{Artifact: a, Reason: reason}
	rel.Err = func() error {
		if err := os.MkdirAll(m.paths.BackupDir, 0755); err != nil {
			return fmt.Errorf("cannot create backup folder: %w", err)
		}
		target, err := m.backupTarget(a, m.now())
		if err != nil {
			return fmt.Errorf("cannot choose a backup name: %w", err)
		}
		rel.Target = target
		if err := os.Rename(a.Path, target); err != nil {
			return fmt.Errorf("cannot move to backup: %w", err)
		}
		return nil
	}()

	if rel.Err != nil {
		m.logger.Warn("artifact left in place",
			zap.String("artifact", a.Name()),
			zap.String("reason", string(reason)),
			zap.Error(rel.Err),
		)
		return rel
	}
	m.logger.Info("artifact moved to backup",
		zap.String("from", a.Name()),
		zap.String("to", filepath.Base(rel.Target)),
		zap.String("reason", string(reason)),
	)
	return rel
}

// ClientSource tells how the client of a run was determined.
type ClientSource string

const (
	SourceRequest ClientSource = "request"         // given explicitly by the caller.
	SourceRecord  ClientSource = "client record"   // read from the client record file.
	SourceLatest  ClientSource = "latest modified" // no client record: most recent identifier file.
)

// Resolution is the outcome of ResolveInput.
type Resolution struct {
	Input          Artifact        // identifier file seeding the run.
	Source         ClientSource    // branch used to pick it.
	RecordedClient string          // client record content, if any.
	Report         LifecycleReport // other identifier files relocated.
}

// ResolveInput picks the identifier file of the current client and relocates
// every other one.
//
// The current client is the one of the client record. If there is no client
// record, the most recently modified identifier file wins. Among several
// periods of the same client, the most recently modified file wins too.
func (m *Lifecycle) ResolveInput() (Resolution, error) {
	var res Resolution
	found, err := m.paths.Scan(Input)
	if err != nil {
		return res, err
	}
	if len(found) == 0 {
		return res, fmt.Errorf("%w in %q", ErrNoInput, m.paths.WorkDir)
	}

	candidates := found
	name, err := ReadClientRecord(m.paths.ClientRecordFile())
	switch {
	case err == nil:
		token, err := ClientToken(name)
		if err != nil {
			return res, fmt.Errorf("client record %q: %w", m.paths.ClientRecordFile(), err)
		}
		candidates = nil
		for _, a := range found {
			if a.Token == token {
				candidates = append(candidates, a)
			}
		}
		if len(candidates) == 0 {
			return res, fmt.Errorf("%w for the recorded client %q in %q", ErrNoInput, name, m.paths.WorkDir)
		}
		res.Source, res.RecordedClient = SourceRecord, name
	case errors.Is(err, fs.ErrNotExist):
		res.Source = SourceLatest
		m.logger.Warn("no client record, picking the most recently modified identifier file",
			zap.String("record", m.paths.ClientRecordFile()))
	default:
		return res, err
	}

	res.Input = latest(candidates)
	current := ClientContext{Token: res.Input.Token, Period: res.Input.Period}
	for _, a := range found {
		if a.Path == res.Input.Path {
			continue
		}
		res.Report.add(m.relocate(a, reasonFor(a, current)))
	}
	return res, nil
}

// latest returns the most recently modified artifact, the greatest path on ties.
func latest(artifacts []Artifact) Artifact {
	best := artifacts[0]
	for _, a := range artifacts[1:] {
		if a.ModTime.After(best.ModTime) || (a.ModTime.Equal(best.ModTime) && a.Path > best.Path) {
			best = a
		}
	}
	return best
}
