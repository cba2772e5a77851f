package mediaserver

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Subdirectories sampled by the quick estimate. These hold the bulk of the
// data worth copying; Cache and Logs are excluded from backups anyway.
var quickEstimateDirs = []string{
	"Plug-in Support",
	"Metadata",
	"Media",
}

// QuickSize estimates the backup size of a data directory by summing a
// fixed allow-list of subdirectories plus the top-level files. It trades
// accuracy for speed: excluded trees (Cache, Logs, ...) are never walked.
// Use TreeSize for the authoritative number.
func QuickSize(dataDir string) (int64, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, err := entry.Info(); err == nil {
			total += info.Size()
		}
	}

	for _, sub := range quickEstimateDirs {
		size, err := TreeSize(filepath.Join(dataDir, sub))
		if err != nil {
			continue
		}
		total += size
	}

	return total, nil
}

// TreeSize walks the whole tree under root and sums regular-file sizes.
// Unreadable entries are skipped rather than failing the walk.
func TreeSize(root string) (int64, error) {
	if _, err := os.Stat(root); err != nil {
		return 0, err
	}

	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A root that cannot be read at all must surface, not
			// report an empty tree.
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}
