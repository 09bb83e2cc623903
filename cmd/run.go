package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/etnz/reportprep/renderer"
)

type runCmd struct {
	name    string
	preview int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "record the client, extract and classify in one go" }
func (*runCmd) Usage() string {
	return `rprep run [-name <full name>] [-preview <rows>]

  Runs 'client', 'extract' and 'map' for the recorded period.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Client full name, instead of the account owner of the report")
	f.IntVar(&c.preview, "preview", renderer.DefaultPreviewLimit, "Rows shown per category, 0 to hide the preview")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	defer logger.Sync()
	config, err := loadConfig(logger)
	if err != nil {
		return exitStatus(err)
	}
	if _, err := recordClient(config, c.name, logger); err != nil {
		return exitStatus(err)
	}
	req, err := newRequest(config, logger)
	if err != nil {
		return exitStatus(err)
	}
	s, err := newPipeline(config, logger).Run(ctx, req)
	if s != nil && s.Client.Token != "" {
		printMarkdown(renderer.SummaryMarkdown(s))
	}
	if err != nil {
		return exitStatus(err)
	}
	if c.preview > 0 {
		printMarkdown(renderer.PreviewMarkdown(s.Partition, c.preview))
	}
	return subcommands.ExitSuccess
}
