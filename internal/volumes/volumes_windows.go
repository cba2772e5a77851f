//go:build windows

package volumes

import (
	"os"

	"golang.org/x/sys/windows"

	"plexvault/internal/model"
)

// List enumerates mounted drive letters with their free space.
func List() ([]model.Volume, error) {
	var vols []model.Volume

	for letter := 'A'; letter <= 'Z'; letter++ {
		drive := string(letter) + `:\`
		if _, err := os.Stat(drive); err != nil {
			continue
		}

		p, err := windows.UTF16PtrFromString(drive)
		if err != nil {
			continue
		}

		var free, total, totalFree uint64
		if err := windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
			continue
		}

		vols = append(vols, model.Volume{
			Path:       drive,
			Label:      "Drive " + string(letter) + ":",
			TotalBytes: total,
			FreeBytes:  free,
			UsedBytes:  total - free,
		})
	}

	return vols, nil
}
