package mediaserver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the media server's data directory name, identical on every
// platform under its respective application-data root.
const AppDirName = "Plex Media Server"

// DataDirCandidates returns the well-known per-platform locations of the
// server's data directory, most common first.
func DataDirCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join(os.Getenv("LOCALAPPDATA"), AppDirName),
		}
	case "darwin":
		home, _ := os.UserHomeDir()
		return []string{
			filepath.Join(home, "Library", "Application Support", AppDirName),
		}
	default:
		home, _ := os.UserHomeDir()
		return []string{
			filepath.Join("/var/lib/plexmediaserver/Library/Application Support", AppDirName),
			filepath.Join(home, ".local", "share", AppDirName),
			filepath.Join("/var/snap/plexmediaserver/common/Library/Application Support", AppDirName),
		}
	}
}

// DefaultDataDir returns the first well-known location for the current
// platform, whether or not it exists. Used as the config default.
func DefaultDataDir() string {
	return DataDirCandidates()[0]
}

// Discover returns the first data-dir candidate that exists on disk.
func Discover() (string, error) {
	for _, dir := range DataDirCandidates() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	return "", fmt.Errorf("media server data directory not found (checked %d locations)", len(DataDirCandidates()))
}
