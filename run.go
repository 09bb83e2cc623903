package reportprep

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/etnz/reportprep/date"
)

// Pipeline chains the steps of a run on a workspace.
type Pipeline struct {
	Paths  WorkspacePaths
	Logger *zap.Logger      // nil discards logs.
	Lock   bool             // hold the lock file while artifacts are moved and written.
	Marker string           // backup marker, DefaultBackupMarker if empty.
	Now    func() time.Time // backup clock, time.Now if nil.
}

// Request is the input of an extraction.
type Request struct {
	Client      string      // client display name.
	Period      date.Period // report period.
	Identifiers []string    // raw identifiers, in report order.
}

// Summary reports everything a run did.
type Summary struct {
	RunID     string
	Client    ClientContext
	Source    ClientSource // how the client was determined.
	InputFile string       // identifier file written or read.
	Screening Screening
	Partition Partition
	Mapped    bool // outputs were written.

	InputReport  LifecycleReport // identifier files relocated.
	OutputReport LifecycleReport // outputs relocated.
	Written      WriteResult
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Pipeline) lifecycle(s *Summary) *Lifecycle {
	opts := []LifecycleOption{
		WithMarker(p.Marker),
		WithLogger(p.logger().With(zap.String("run", s.RunID))),
	}
	if p.Now != nil {
		opts = append(opts, WithClock(p.Now))
	}
	return NewLifecycle(p.Paths, opts...)
}

// lock acquires the lock file if the pipeline is configured to.
func (p *Pipeline) lock(s *Summary) (*Lock, error) {
	if !p.Lock {
		return nil, nil
	}
	return AcquireLock(p.Paths.LockFile(), s.RunID)
}

func newSummary() *Summary { return &Summary{RunID: uuid.NewString()} }

// Extract screens the identifiers of req, relocates the identifier files
// of previous runs and writes the identifier file of req.
func (p *Pipeline) Extract(ctx context.Context, req Request) (*Summary, error) {
	s := newSummary()
	if err := p.screen(s, req); err != nil {
		return s, err
	}
	if err := ctx.Err(); err != nil {
		return s, err
	}
	l, err := p.lock(s)
	if err != nil {
		return s, err
	}
	defer l.Release()
	return s, p.extract(ctx, s)
}

// Map resolves the identifier file of the current client, classifies its
// identifiers and writes the outputs in place of the previous ones.
func (p *Pipeline) Map(ctx context.Context) (*Summary, error) {
	s := newSummary()
	l, err := p.lock(s)
	if err != nil {
		return s, err
	}
	defer l.Release()

	res, err := p.lifecycle(s).ResolveInput()
	s.Source, s.InputReport = res.Source, res.Report
	if err != nil {
		return s, err
	}
	s.InputFile = res.Input.Path
	s.Client = ClientContext{DisplayName: res.RecordedClient, Token: res.Input.Token, Period: res.Input.Period}
	if err := ctx.Err(); err != nil {
		return s, err
	}
	return s, p.mapInput(ctx, s)
}

// Run extracts the identifiers of req and maps them, under the same lock.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Summary, error) {
	s := newSummary()
	if err := p.screen(s, req); err != nil {
		return s, err
	}
	if err := ctx.Err(); err != nil {
		return s, err
	}
	l, err := p.lock(s)
	if err != nil {
		return s, err
	}
	defer l.Release()

	if err := p.extract(ctx, s); err != nil {
		return s, err
	}
	if err := ctx.Err(); err != nil {
		return s, err
	}
	return s, p.mapInput(ctx, s)
}

func (p *Pipeline) screen(s *Summary, req Request) error {
	c, err := NewClientContext(req.Client, req.Period)
	if err != nil {
		return err
	}
	s.Client, s.Source = c, SourceRequest
	s.Screening = Screen(req.Identifiers)
	p.logger().Info("identifiers screened",
		zap.String("run", s.RunID),
		zap.Int("raw", s.Screening.Raw),
		zap.Int("valid", len(s.Screening.Valid)),
		zap.Int("rejected", len(s.Screening.Rejected)),
		zap.Int("duplicates", s.Screening.Duplicates),
	)
	if len(s.Screening.Valid) == 0 {
		return fmt.Errorf("%w among %d identifiers of %q", ErrNoIdentifiers, s.Screening.Raw, c.DisplayName)
	}
	return nil
}

func (p *Pipeline) extract(ctx context.Context, s *Summary) error {
	rep, err := p.lifecycle(s).PrepareInput(s.Client, false)
	s.InputReport.Merge(rep)
	if err != nil {
		return err
	}
	s.InputFile = p.Paths.ArtifactPath(Input, s.Client)
	return WriteIdentifierFile(s.InputFile, IdentifierFile{
		Client: s.Client.DisplayName,
		Period: s.Client.Period,
		ISIN:   s.Screening.Valid,
	})
}

// mapInput classifies the identifiers of s.InputFile and writes the outputs.
func (p *Pipeline) mapInput(ctx context.Context, s *Summary) error {
	log := p.logger().With(zap.String("run", s.RunID))
	f, err := ReadIdentifierFile(s.InputFile)
	if err != nil {
		return err
	}
	c, err := NewClientContext(f.Client, f.Period)
	if err != nil {
		return fmt.Errorf("%q: %w", s.InputFile, err)
	}
	if name := ArtifactName(Input, c.Token, c.Period); name != filepath.Base(s.InputFile) {
		log.Warn("identifier file name does not match its content",
			zap.String("file", filepath.Base(s.InputFile)), zap.String("expected", name))
	}
	if s.Source != SourceRequest {
		s.Client = c
		s.Screening = Screen(f.ISIN)
	}
	if n := len(s.Screening.Rejected); n > 0 {
		log.Warn("invalid identifiers ignored", zap.Int("count", n))
	}

	catalogs, err := LoadCatalogs(p.Paths, log)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Partition = Classify(s.Screening.Valid, catalogs)
	log.Info("identifiers classified",
		zap.Int("equities", len(s.Partition.Equities)),
		zap.Int("bonds", len(s.Partition.Bonds)),
		zap.Int("structured", len(s.Partition.Structured)),
		zap.Int("unmatched", len(s.Partition.Unmatched)),
	)

	rep, err := p.lifecycle(s).PrepareOutputs(c)
	s.OutputReport.Merge(rep)
	if err != nil {
		return err
	}
	s.Written, err = NewWriter(p.Paths, log).Write(c, s.Partition)
	if err != nil {
		return err
	}
	s.Mapped = true
	return nil
}
