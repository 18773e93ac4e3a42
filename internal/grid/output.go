package grid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrOutputExists is returned in flat mode when the output directory is
// already present.
var ErrOutputExists = errors.New("output directory already exists")

// TimestampLayout names per-run output directories.
const TimestampLayout = "20060102-150405"

// PrepareOutputDir creates the directory grids are written to. In
// timestamped mode it is base/<YYYYMMDD-HHMMSS> and may already exist;
// otherwise base itself must not exist yet.
func PrepareOutputDir(base string, timestamped bool, now time.Time) (string, error) {
	if timestamped {
		dir := filepath.Join(base, now.Format(TimestampLayout))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
		return dir, nil
	}
	dir := filepath.Clean(base)
	if parent := filepath.Dir(dir); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("create output parent: %w", err)
		}
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s: %w", dir, ErrOutputExists)
		}
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}
