package mediaserver

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"plexvault/internal/logger"
)

// Pid file the server keeps in its data directory while it runs.
const pidFileName = "plexmediaserver.pid"

// WaitForQuiescence blocks until the server looks shut down: its pid file
// disappears from the data directory, the grace period elapses, or ctx is
// cancelled. A data directory without a pid file counts as quiescent
// immediately. The wait is best-effort and never returns an error for a
// server that simply refuses to die; the mirror tool's own retries cover
// straggling file locks.
func WaitForQuiescence(ctx context.Context, dataDir string, grace time.Duration) error {
	pidPath := filepath.Join(dataDir, pidFileName)
	if _, err := os.Stat(pidPath); err != nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		// Without a watcher the fixed grace period still applies.
		return sleep(ctx, grace)
	}
	defer func() {
		_ = fw.Close()
	}()

	if err := fw.Add(dataDir); err != nil {
		return sleep(ctx, grace)
	}

	// The pid file may have vanished between the stat and the watch.
	if _, err := os.Stat(pidPath); err != nil {
		return nil
	}

	deadline := time.NewTimer(grace)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-deadline.C:
			logger.Log.Warn("server did not quiesce within grace period",
				zap.String("pid_file", pidPath),
				zap.Duration("grace", grace))
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if event.Name == pidPath && (event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)) {
				logger.Log.Debug("pid file removed, server quiescent",
					zap.String("pid_file", pidPath))
				return nil
			}

		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
