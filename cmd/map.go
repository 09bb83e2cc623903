package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/etnz/reportprep/renderer"
)

type mapCmd struct {
	preview int
}

func (*mapCmd) Name() string     { return "map" }
func (*mapCmd) Synopsis() string { return "classify the extracted ISIN codes" }
func (*mapCmd) Usage() string {
	return `rprep map [-preview <rows>]

  Looks up the identifiers of the current isin_… file in the equities, bonds
  and structured products catalogs, then writes one record per category and
  copies the term-sheets of the structured products. Outputs of previous runs
  are moved to the backup folder first.
`
}

func (c *mapCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.preview, "preview", renderer.DefaultPreviewLimit, "Rows shown per category, 0 to hide the preview")
}

func (c *mapCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	defer logger.Sync()
	config, err := loadConfig(logger)
	if err != nil {
		return exitStatus(err)
	}
	s, err := newPipeline(config, logger).Map(ctx)
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
