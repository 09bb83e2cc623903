package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/reportprep"
	"github.com/etnz/reportprep/date"
)

type datesCmd struct {
	start string
	end   string
}

func (*datesCmd) Name() string     { return "dates" }
func (*datesCmd) Synopsis() string { return "check and record the report period" }
func (*datesCmd) Usage() string {
	return `rprep dates -start <dd/mm/yyyy> -end <dd/mm/yyyy>

  Records the report period in report_dates.json. The start cannot be before
  01.01.2022, no boundary can be on a weekend or a US public holiday and the
  end must be after the start. Dates are accepted as dd/mm/yyyy or dd.mm.yyyy.
`
}

func (c *datesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "First day of the report period")
	f.StringVar(&c.end, "end", "", "Last day of the report period")
}

func (c *datesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.start == "" || c.end == "" {
		fmt.Fprintln(os.Stderr, "Error: -start and -end are required")
		return subcommands.ExitUsageError
	}
	start, err := date.ParseInput(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	end, err := date.ParseInput(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}
	period := date.Period{Start: start, End: end}
	if err := date.CheckReportPeriod(period); err != nil {
		return exitStatus(err)
	}

	logger := newLogger()
	defer logger.Sync()
	config, err := loadConfig(logger)
	if err != nil {
		return exitStatus(err)
	}
	if err := reportprep.WriteDatesRecord(config.Paths().DatesRecordFile(), period); err != nil {
		return exitStatus(err)
	}
	success("Report period %s recorded.", period)
	return subcommands.ExitSuccess
}
