package reportprep

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	paths := newWorkspace(t)
	pipeline := &Pipeline{Paths: paths, Now: fixedClock}

	s, err := pipeline.Run(context.Background(), Request{
		Client:      "Ivanov I.I.",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{"US0378331005", "US0378331005", "INVALID000000"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.RunID)
	assert.True(t, s.Mapped)
	assert.Equal(t, SourceRequest, s.Source)
	assert.Equal(t, 3, s.Screening.Raw)
	assert.Equal(t, []string{AAPL}, s.Screening.Valid)
	assert.Len(t, s.Screening.Rejected, 1)
	assert.Equal(t, 1, s.Screening.Duplicates)
	assert.Len(t, s.Partition.Equities, 1)
	assert.Equal(t, 1, s.Written.Items(Equities))
	assert.Empty(t, s.Written.DocumentsMissing)

	assert.Equal(t, []string{
		"bonds_Ivanov I.I._01.06.2024__30.06.2024.json",
		"isin_Ivanov I.I._01.06.2024__30.06.2024.json",
		"sp_Ivanov I.I._01.06.2024__30.06.2024",
		"sp_Ivanov I.I._01.06.2024__30.06.2024.json",
		"stock_etf_Ivanov I.I._01.06.2024__30.06.2024.json",
	}, names(t, paths.WorkDir))
	assert.Empty(t, names(t, paths.BackupDir))
}

func TestRunKeepsOutputsThatCannotBeBackedUp(t *testing.T) {
	paths := newWorkspace(t)
	require.NoError(t, os.WriteFile(paths.BackupDir, nil, 0644))
	previous := touch(t, paths, Equities, "Ivanov I.I.", "01.06.2024", "30.06.2024")
	require.NoError(t, os.WriteFile(previous, []byte(`{"previous":"run"}`), 0644))
	pipeline := &Pipeline{Paths: paths, Now: fixedClock}

	s, err := pipeline.Run(context.Background(), Request{
		Client:      "Ivanov I.I.",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{AAPL},
	})
	require.Error(t, err)
	assert.False(t, s.Mapped)
	require.Len(t, s.OutputReport.Failed, 1)
	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, `{"previous":"run"}`, string(data), "never overwritten")
	assert.NoFileExists(t, paths.ArtifactPath(Bonds, s.Client), "nothing written")
}

func TestRunIdempotent(t *testing.T) {
	paths := newWorkspace(t)
	pipeline := &Pipeline{Paths: paths, Now: fixedClock}
	req := Request{
		Client:      "Ivanov Ivan Ivanovich",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{AAPL, BOND, SPDOC, MSFT},
	}

	_, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	first := names(t, paths.WorkDir)
	s, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, names(t, paths.WorkDir), "one live set")
	assert.Equal(t, 1, s.InputReport.Count(Superseded))
	assert.Equal(t, 5, s.OutputReport.Count(Superseded))
	backups := names(t, paths.BackupDir)
	require.Len(t, backups, 6)
	for _, prefix := range []string{"isin_", "stock_etf_", "bonds_", "noname_isin_"} {
		n := 0
		for _, b := range backups {
			if strings.HasPrefix(b, prefix) {
				n++
			}
		}
		assert.Equal(t, 1, n, "backups of %s", prefix)
	}
}

func TestRunSwitchesClient(t *testing.T) {
	paths := newWorkspace(t)
	pipeline := &Pipeline{Paths: paths, Now: fixedClock}
	period := mustPeriod(t, "01.06.2024", "30.06.2024")

	_, err := pipeline.Run(context.Background(), Request{Client: "Ivanov I.I.", Period: period, Identifiers: []string{AAPL, MSFT}})
	require.NoError(t, err)
	s, err := pipeline.Run(context.Background(), Request{Client: "Petrov P.P.", Period: period, Identifiers: []string{BOND}})
	require.NoError(t, err)

	assert.Equal(t, 1, s.InputReport.Count(Foreign))
	assert.Equal(t, 5, s.OutputReport.Count(Foreign))
	for _, name := range names(t, paths.WorkDir) {
		assert.NotContains(t, name, "Ivanov")
	}
	for _, name := range names(t, paths.BackupDir) {
		assert.Contains(t, name, "Ivanov")
	}
}

func TestExtractThenMap(t *testing.T) {
	paths := newWorkspace(t)
	pipeline := &Pipeline{Paths: paths, Now: fixedClock}
	ctx := context.Background()

	_, err := pipeline.Extract(ctx, Request{
		Client:      "Petrov Petr Petrovich",
		Period:      mustPeriod(t, "01.05.2024", "31.05.2024"),
		Identifiers: []string{BOND},
	})
	require.NoError(t, err)
	s, err := pipeline.Extract(ctx, Request{
		Client:      "Ivanov Ivan Ivanovich",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{AAPL, " ie00b4l5y983 ", SPNODC},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.InputReport.Count(Foreign))
	require.NoError(t, WriteClientRecord(paths.ClientRecordFile(), "Ivanov Ivan Ivanovich"))

	s, err = pipeline.Map(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceRecord, s.Source)
	assert.Equal(t, "Ivanov I.I.", s.Client.Token)
	assert.Equal(t, "Ivanov Ivan Ivanovich", s.Client.DisplayName)
	assert.Len(t, s.Partition.Equities, 2)
	assert.Len(t, s.Partition.Structured, 1)
	assert.Equal(t, []string{SPNODC}, s.Written.DocumentsMissing)
	assert.NoFileExists(t, paths.ArtifactPath(Unmatched, s.Client))
}

func TestExtractNoValidIdentifier(t *testing.T) {
	paths := newWorkspace(t)
	pipeline := &Pipeline{Paths: paths}
	_, err := pipeline.Extract(context.Background(), Request{
		Client:      "Ivanov I.I.",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{"", "US0378331006"},
	})
	assert.ErrorIs(t, err, ErrNoIdentifiers)
	assert.Empty(t, names(t, paths.WorkDir))
}

func TestRunMissingCatalogSheet(t *testing.T) {
	paths := newWorkspace(t)
	writeXLSX(t, paths.BondsCatalog, []string{"Облигации"}, map[string][][]any{"Облигации": {{"ISIN"}}})
	pipeline := &Pipeline{Paths: paths}

	s, err := pipeline.Run(context.Background(), Request{
		Client:      "Ivanov I.I.",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{AAPL},
	})
	assert.ErrorIs(t, err, ErrMissingSheet)
	assert.False(t, s.Mapped)
	assert.NoFileExists(t, paths.ArtifactPath(Equities, s.Client), "no output written")
}

func TestMapFailureKeepsRelocations(t *testing.T) {
	paths := newWorkspace(t)
	writeXLSX(t, paths.BondsCatalog, []string{"Облигации"}, map[string][][]any{"Облигации": {{"ISIN"}}})
	old := time.Now().Add(-time.Hour)
	foreign := touch(t, paths, Input, "Petrov P.P.", "01.06.2024", "30.06.2024")
	require.NoError(t, os.Chtimes(foreign, old, old))
	require.NoError(t, WriteIdentifierFile(paths.ArtifactPath(Input, ClientContext{Token: "Ivanov I.I.", Period: mustPeriod(t, "01.06.2024", "30.06.2024")}),
		IdentifierFile{Client: "Ivanov I.I.", Period: mustPeriod(t, "01.06.2024", "30.06.2024"), ISIN: []string{AAPL}}))

	s, err := (&Pipeline{Paths: paths, Now: fixedClock}).Map(context.Background())
	assert.ErrorIs(t, err, ErrMissingSheet)
	assert.Equal(t, SourceLatest, s.Source)
	assert.Equal(t, "Ivanov I.I.", s.Client.Token, "known before the failure")
	assert.Equal(t, 1, s.InputReport.Count(Foreign))
	assert.NoFileExists(t, foreign)
}

func TestRunLocked(t *testing.T) {
	paths := newWorkspace(t)
	pipeline := &Pipeline{Paths: paths, Lock: true}
	req := Request{Client: "Ivanov I.I.", Period: mustPeriod(t, "01.06.2024", "30.06.2024"), Identifiers: []string{AAPL}}

	l, err := AcquireLock(paths.LockFile(), "other-run")
	require.NoError(t, err)
	_, err = pipeline.Run(context.Background(), req)
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorContains(t, err, "other-run")
	require.NoError(t, l.Release())

	_, err = pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NoFileExists(t, paths.LockFile(), "released after the run")
}

func TestRunCancelled(t *testing.T) {
	paths := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Pipeline{Paths: paths}).Run(ctx, Request{
		Client:      "Ivanov I.I.",
		Period:      mustPeriod(t, "01.06.2024", "30.06.2024"),
		Identifiers: []string{AAPL},
	})
	assert.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(paths.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
