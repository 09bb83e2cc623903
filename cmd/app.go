// Package cmd implements the CLI application preparing the inputs of brokerage reports.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/etnz/reportprep"
	"github.com/etnz/reportprep/workbook"
)

// Commands are the subcommands of the application, registered by the main package.
var Commands = []subcommands.Command{
	&datesCmd{},
	&clientCmd{},
	&extractCmd{},
	&mapCmd{},
	&runCmd{},
	&checkCmd{},
	&purgeBackupCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", reportprep.DefaultConfigFile, "Path to the workspace configuration file (YAML)")
var verbose = flag.Bool("v", false, "Log debug messages")
var useLock = flag.Bool("lock", false, "Guard the work folder with a lock file during the run")

// stdout receives the rendered markdown.
var stdout io.Writer = os.Stdout

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
)

// success prints a one line confirmation.
func success(format string, a ...any) {
	green.Fprintf(stdout, format+"\n", a...)
}

// newLogger returns the logger of the commands, writing to stderr.
func newLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if *verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadConfig reads the configuration file. Without it, the default layout is
// used relative to the folder of the missing file.
func loadConfig(logger *zap.Logger) (*reportprep.Config, error) {
	c, err := reportprep.LoadConfig(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no configuration file, using the default layout", zap.String("config", *configFile))
		c = reportprep.DefaultConfig()
		c.Resolve(filepath.Dir(*configFile))
		err = nil
	}
	if err != nil {
		return nil, err
	}
	if *useLock {
		c.Lock = true
	}
	return c, nil
}

// newPipeline returns the pipeline of the configured workspace.
func newPipeline(c *reportprep.Config, logger *zap.Logger) *reportprep.Pipeline {
	p := c.Pipeline()
	p.Logger = logger
	return p
}

// openReport opens the only report workbook of the input folder.
func openReport(c *reportprep.Config) (*workbook.Workbook, error) {
	path, err := workbook.FindReport(c.InputDir, c.ReportPattern)
	if err != nil {
		return nil, err
	}
	return workbook.Open(path)
}

// printMarkdown renders md for the terminal, or prints it as is if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// exitStatus prints err and returns the matching exit status.
func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	red.Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
