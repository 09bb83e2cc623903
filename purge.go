package reportprep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// PurgeBackup removes every entry of the backup folder and returns how many
// were removed. It is the only operation of the module that deletes
// artifacts; a missing folder is already empty.
func PurgeBackup(dir string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cannot list backup folder %q: %w", dir, err)
	}

	var errs []error
	removed := 0
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			logger.Warn("backup entry not removed", zap.String("entry", e.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Debug("backup entry removed", zap.String("entry", e.Name()))
		removed++
	}
	return removed, errors.Join(errs...)
}
