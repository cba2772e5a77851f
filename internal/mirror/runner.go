package mirror

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"plexvault/internal/logger"
)

// Fixed argument contract of the mirror-copy tool. These values are part of
// the tool's compatibility surface and must not drift.
const (
	retryCount  = 3
	retryWait   = 5
	workerCount = 8
)

// Exclusions relative to the source root.
const (
	excludeDir     = "Cache/Transcode"
	excludeFilePat = "*.tmp"
)

// OrchestrationExitCode marks a failure to launch or bracket the copy, as
// opposed to an exit status reported by the tool itself.
const OrchestrationExitCode = 999

// Request describes one mirror-copy invocation.
type Request struct {
	Source      string
	Dest        string
	LogPath     string
	StopService bool
}

// Result is what the runner hands back once the whole bracket (optional
// service stop, copy, optional restart) has finished.
//
// Exit codes follow the copy tool's convention: 0-7 are benign bitmask
// values, 8 and above signal at least one serious failure, and
// OrchestrationExitCode means the tool never ran.
type Result struct {
	ExitCode int
	Duration time.Duration
	Err      error
}

// ServiceController is the service stop/start collaborator. Errors from it
// are logged and suppressed: a missing or stubborn service never aborts
// the copy.
type ServiceController interface {
	Stop(ctx context.Context) error
	Start(ctx context.Context) error
}

type Runner struct {
	tool      string
	svc       ServiceController
	waitQuiet func(ctx context.Context) error
}

// NewRunner builds a runner invoking the given mirror-copy tool. waitQuiet
// is called after a service stop to let the server settle; nil skips the
// wait.
func NewRunner(tool string, svc ServiceController, waitQuiet func(ctx context.Context) error) *Runner {
	return &Runner{tool: tool, svc: svc, waitQuiet: waitQuiet}
}

// Run executes the full bracket and blocks until it finishes. It is meant
// to run on its own goroutine; the caller cancels via ctx.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	start := time.Now()

	if req.StopService {
		if err := r.svc.Stop(ctx); err != nil {
			logger.Log.Warn("service stop failed, copying anyway",
				zap.Error(err))
		} else if r.waitQuiet != nil {
			if err := r.waitQuiet(ctx); err != nil {
				logger.Log.Warn("quiescence wait interrupted",
					zap.Error(err))
			}
		}

		// Restart regardless of copy outcome, best-effort. Uses a fresh
		// context so a cancelled job still gets its server back.
		defer func() {
			restartCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err := r.svc.Start(restartCtx); err != nil {
				logger.Log.Warn("service restart failed",
					zap.Error(err))
			}
		}()
	}

	cmd := exec.CommandContext(ctx, r.tool, Args(req)...)

	logger.Log.Info("mirror copy starting",
		zap.String("tool", r.tool),
		zap.String("src", req.Source),
		zap.String("dst", req.Dest),
		zap.String("log", req.LogPath))

	err := cmd.Run()
	duration := time.Since(start)

	if err == nil {
		return Result{ExitCode: 0, Duration: duration}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Duration: duration}
	}

	// The tool never launched (missing binary, bad ctx, ...).
	return Result{
		ExitCode: OrchestrationExitCode,
		Err:      fmt.Errorf("failed to launch %s: %w", r.tool, err),
	}
}

// Args builds the fixed mirror-copy argument set: mirror mode, 3 retries
// with a 5 second wait, 8 parallel movers, the transcoder cache and
// temporary files excluded, log written to the request's log path.
func Args(req Request) []string {
	return []string{
		req.Source,
		req.Dest,
		"/MIR",
		fmt.Sprintf("/R:%d", retryCount),
		fmt.Sprintf("/W:%d", retryWait),
		fmt.Sprintf("/MT:%d", workerCount),
		"/XD", filepath.Join(req.Source, filepath.FromSlash(excludeDir)),
		"/XF", excludeFilePat,
		"/NP",
		"/LOG:" + req.LogPath,
	}
}
