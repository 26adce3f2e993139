package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotDirectory is returned when the results path exists but is not a
// directory.
var ErrNotDirectory = errors.New("not a directory")

// ResetResultsDirectory removes dir with all its contents and recreates it
// empty. Calling it on a missing directory just creates it.
func ResetResultsDirectory(dir string) error {
	info, err := os.Lstat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("results path %s: %w", dir, ErrNotDirectory)
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing results directory: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("checking results directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	Logger().Debug("results directory reset", "dir", dir)
	return nil
}
