package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/reportprep"
	"github.com/etnz/reportprep/renderer"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "check ISIN codes" }
func (*checkCmd) Usage() string {
	return `rprep check <isin>...

  Prints whether each identifier is a valid ISIN, and why not. Fails if any
  of them is invalid. The workspace is not used.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no identifier to check")
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.CheckMarkdown(f.Args()))
	for _, raw := range f.Args() {
		if !reportprep.IsISIN(raw) {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
