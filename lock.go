package reportprep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Lock is an advisory lock file holding the id of the run that created it.
type Lock struct {
	path  string
	runID string
}

// AcquireLock creates the lock file at path. If it already exists, the error
// wraps ErrLocked and names the run holding it.
func AcquireLock(path, runID string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrExist) {
		holder, _ := os.ReadFile(path)
		return nil, fmt.Errorf("%w by run %q (remove %q if no run is in progress)", ErrLocked, strings.TrimSpace(string(holder)), path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot create lock file: %w", err)
	}
	_, err = f.WriteString(runID + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("cannot write lock file: %w", err)
	}
	return &Lock{path: path, runID: runID}, nil
}

// Release removes the lock file. Releasing a nil Lock does nothing.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot release lock: %w", err)
	}
	return nil
}
