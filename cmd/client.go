package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/reportprep"
)

type clientCmd struct {
	name string
}

func (*clientCmd) Name() string     { return "client" }
func (*clientCmd) Synopsis() string { return "record the client of the report" }
func (*clientCmd) Usage() string {
	return `rprep client [-name <full name>]

  Reads the account owner of the report workbook found in the input folder
  and records it in name_clients.json. With -name, the given name is
  recorded instead.
`
}

func (c *clientCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Client full name, instead of the account owner of the report")
}

func (c *clientCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	defer logger.Sync()
	config, err := loadConfig(logger)
	if err != nil {
		return exitStatus(err)
	}
	name, err := recordClient(config, c.name, logger)
	if err != nil {
		return exitStatus(err)
	}
	success("Client %q recorded.", name)
	return subcommands.ExitSuccess
}

// recordClient writes the client record with name, or with the account owner
// of the report workbook if name is empty.
func recordClient(config *reportprep.Config, name string, logger *zap.Logger) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		wb, err := openReport(config)
		if err != nil {
			return "", err
		}
		defer wb.Close()
		if name, err = wb.Owner(); err != nil {
			return "", fmt.Errorf("%q: %w", wb.Path(), err)
		}
		logger.Debug("account owner read", zap.String("report", wb.Path()), zap.String("owner", name))
	}
	if _, err := reportprep.ClientToken(name); err != nil {
		return "", err
	}
	return name, reportprep.WriteClientRecord(config.Paths().ClientRecordFile(), name)
}
