package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/reportprep"
)

type purgeBackupCmd struct {
	yes bool
}

func (*purgeBackupCmd) Name() string     { return "purge-backup" }
func (*purgeBackupCmd) Synopsis() string { return "delete everything in the backup folder" }
func (*purgeBackupCmd) Usage() string {
	return `rprep purge-backup -y

  Deletes every file and folder of the backup folder. This cannot be undone,
  hence -y is required.
`
}

func (c *purgeBackupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm the deletion")
}

func (c *purgeBackupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: purge-backup deletes the backup folder content, confirm with -y")
		return subcommands.ExitUsageError
	}
	logger := newLogger()
	defer logger.Sync()
	config, err := loadConfig(logger)
	if err != nil {
		return exitStatus(err)
	}
	n, err := reportprep.PurgeBackup(config.BackupDir, logger)
	success("%d entries removed from %s.", n, config.BackupDir)
	return exitStatus(err)
}
