package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/reportprep"
	"github.com/etnz/reportprep/renderer"
)

type extractCmd struct{}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "extract the ISIN codes of the report" }
func (*extractCmd) Usage() string {
	return `rprep extract

  Reads the ISIN column of the report workbook, keeps the valid identifiers
  once each and writes them in isin_<client>_<start>__<end>.json for the
  recorded client and period. Previous identifier files are moved to the
  backup folder.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	defer logger.Sync()
	config, err := loadConfig(logger)
	if err != nil {
		return exitStatus(err)
	}
	req, err := newRequest(config, logger)
	if err != nil {
		return exitStatus(err)
	}
	s, err := newPipeline(config, logger).Extract(ctx, req)
	if s != nil && s.Client.Token != "" {
		printMarkdown(renderer.SummaryMarkdown(s))
	}
	return exitStatus(err)
}

// newRequest reads the recorded client and period and the identifiers of the
// report workbook.
func newRequest(config *reportprep.Config, logger *zap.Logger) (reportprep.Request, error) {
	var req reportprep.Request
	paths := config.Paths()
	client, err := reportprep.ReadClientRecord(paths.ClientRecordFile())
	if err != nil {
		return req, fmt.Errorf("no client recorded, run 'rprep client' first: %w", err)
	}
	period, err := reportprep.ReadDatesRecord(paths.DatesRecordFile())
	if err != nil {
		return req, fmt.Errorf("no period recorded, run 'rprep dates' first: %w", err)
	}

	wb, err := openReport(config)
	if err != nil {
		return req, err
	}
	defer wb.Close()
	ids, err := wb.Identifiers()
	if err != nil {
		return req, fmt.Errorf("%q: %w", wb.Path(), err)
	}
	logger.Debug("identifiers read", zap.String("report", wb.Path()), zap.Int("count", len(ids)))
	return reportprep.Request{Client: client, Period: period, Identifiers: ids}, nil
}
