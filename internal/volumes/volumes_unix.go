//go:build linux || darwin

package volumes

import (
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"plexvault/internal/model"
)

// Mount points worth offering as backup destinations. Globs cover
// removable and secondary volumes.
var mountCandidates = []string{
	"/",
	"/home",
	"/mnt/*",
	"/media/*",
	"/media/*/*",
	"/Volumes/*",
}

// List enumerates distinct mounted filesystems with their free space.
// Mounts sharing a device with one already listed are skipped.
func List() ([]model.Volume, error) {
	seen := make(map[uint64]bool)
	var vols []model.Volume

	for _, pattern := range mountCandidates {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}

		for _, mount := range matches {
			info, err := os.Stat(mount)
			if err != nil || !info.IsDir() {
				continue
			}

			st, ok := info.Sys().(*syscall.Stat_t)
			if !ok || seen[uint64(st.Dev)] {
				continue
			}

			var fs unix.Statfs_t
			if err := unix.Statfs(mount, &fs); err != nil {
				continue
			}

			seen[uint64(st.Dev)] = true

			total := uint64(fs.Blocks) * uint64(fs.Bsize)
			free := uint64(fs.Bavail) * uint64(fs.Bsize)
			vols = append(vols, model.Volume{
				Path:       mount,
				Label:      mount,
				TotalBytes: total,
				FreeBytes:  free,
				UsedBytes:  total - free,
			})
		}
	}

	return vols, nil
}
