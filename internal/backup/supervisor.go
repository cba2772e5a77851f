package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"plexvault/internal/logger"
	"plexvault/internal/mediaserver"
	"plexvault/internal/mirror"
	"plexvault/internal/model"
)

// The completion poll is deliberately more frequent than the progress tick
// so a finished job is noticed within about a second.
const (
	progressInterval   = 3 * time.Second
	completionInterval = time.Second
)

var (
	ErrAlreadyRunning     = errors.New("a backup job is already running")
	ErrInvalidDestination = errors.New("destination volume is missing or not writable")
)

// Runner executes the stop/copy/restart bracket and blocks until it ends.
type Runner interface {
	Run(ctx context.Context, req mirror.Request) mirror.Result
}

// Recorder persists finished runs. A nil recorder disables persistence.
type Recorder interface {
	Save(run model.Run) error
}

// Supervisor owns at most one backup job at a time. It is the sole writer
// of Job state; everything observable goes out as a JobSnapshot.
type Supervisor struct {
	mu       sync.RWMutex
	clk      clock.Clock
	runner   Runner
	recorder Recorder

	progressEvery   time.Duration
	completionEvery time.Duration

	job       *Job
	cancelRun context.CancelFunc
	stopPolls chan struct{}
	stopOnce  *sync.Once
}

type Option func(*Supervisor)

// WithClock swaps the wall clock, mainly for tests.
func WithClock(clk clock.Clock) Option {
	return func(s *Supervisor) { s.clk = clk }
}

// WithIntervals overrides the progress tick and completion poll periods.
func WithIntervals(progress, completion time.Duration) Option {
	return func(s *Supervisor) {
		s.progressEvery = progress
		s.completionEvery = completion
	}
}

// WithRecorder persists every finished run through rec.
func WithRecorder(rec Recorder) Option {
	return func(s *Supervisor) { s.recorder = rec }
}

func NewSupervisor(runner Runner, opts ...Option) *Supervisor {
	s := &Supervisor{
		clk:             clock.WallClock,
		runner:          runner,
		progressEvery:   progressInterval,
		completionEvery: completionInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StartRequest describes the job to launch. Cold and smart operations
// imply a service pause; sending the request is the caller's explicit
// acknowledgment of that.
type StartRequest struct {
	Operation   model.Operation
	SourcePath  string
	DestPath    string
	LogPath     string
	StopService bool
}

// Start validates the request, transitions a fresh job to Running and
// launches the copy bracket off the calling goroutine. It returns
// ErrAlreadyRunning while a job is in flight and ErrInvalidDestination
// when the destination cannot take files.
func (s *Supervisor) Start(req StartRequest) (model.JobSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil && !s.job.terminal() {
		return model.JobSnapshot{}, ErrAlreadyRunning
	}

	if err := checkDestination(req.DestPath); err != nil {
		return model.JobSnapshot{}, err
	}

	if _, err := os.Stat(req.SourcePath); err != nil {
		return model.JobSnapshot{}, fmt.Errorf("source data directory: %w", err)
	}

	now := s.clk.Now()
	job := &Job{
		ID:          uuid.NewString(),
		Operation:   req.Operation,
		SourcePath:  req.SourcePath,
		DestPath:    req.DestPath,
		LogPath:     req.LogPath,
		StopService: req.StopService,
		State:       model.StatePending,
		Progress:    estimateProgress(0),
		StartedAt:   now,
	}

	// The request itself acknowledges any service pause, so the job
	// confirms immediately and goes straight to Running.
	job.State = model.StateConfirmed
	job.State = model.StateRunning

	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan mirror.Result, 1)
	stop := make(chan struct{})

	s.job = job
	s.cancelRun = cancel
	s.stopPolls = stop
	s.stopOnce = new(sync.Once)

	go s.runWorker(ctx, req, resultCh)
	go s.pollProgress(job, stop)
	go s.pollCompletion(job, resultCh, stop)

	logger.Log.Info("backup job started",
		zap.String("id", job.ID),
		zap.String("operation", string(job.Operation)),
		zap.String("src", job.SourcePath),
		zap.String("dst", job.DestPath),
		zap.Bool("stop_service", job.StopService))

	return job.snapshot(now), nil
}

// Snapshot is a non-blocking read of the current (or last finished) job.
// The second return value is false when no job was ever started.
func (s *Supervisor) Snapshot() (model.JobSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.job == nil {
		return model.JobSnapshot{}, false
	}

	return s.job.snapshot(s.clk.Now()), true
}

// Busy reports whether a job is currently in flight. Job initiation is
// derived from this, never tracked separately.
func (s *Supervisor) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.job != nil && !s.job.terminal()
}

// Cancel cooperatively stops the in-flight job: the copy process gets a
// termination request, both pollers halt, and the job goes Cancelled.
// Calling it with no active job is a no-op. The external process may take
// a bounded grace period to actually die; Cancel does not wait for it, and
// the runner's own deferred restart still brings a paused server back.
func (s *Supervisor) Cancel() {
	s.mu.Lock()

	job := s.job
	if job == nil || job.terminal() {
		s.mu.Unlock()
		return
	}

	s.halt()
	if s.cancelRun != nil {
		s.cancelRun()
	}

	now := s.clk.Now()
	job.State = model.StateCancelled
	job.EndedAt = &now

	run := s.runRecord(job, mirror.Result{Duration: now.Sub(job.StartedAt)})
	s.mu.Unlock()

	s.saveRun(run)

	logger.Log.Info("backup job cancelled",
		zap.String("id", job.ID))
}

func (s *Supervisor) runWorker(ctx context.Context, req StartRequest, out chan<- mirror.Result) {
	defer func() {
		if r := recover(); r != nil {
			out <- mirror.Result{
				ExitCode: mirror.OrchestrationExitCode,
				Err:      fmt.Errorf("runner panic: %v", r),
			}
		}
	}()

	out <- s.runner.Run(ctx, mirror.Request{
		Source:      req.SourcePath,
		Dest:        req.DestPath,
		LogPath:     req.LogPath,
		StopService: req.StopService,
	})
}

// pollProgress recomputes the progress bucket from wall-clock elapsed time
// on a fixed cadence. A single goroutine per job, so ticks never overlap.
func (s *Supervisor) pollProgress(job *Job, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case <-s.clk.After(s.progressEvery):
			s.mu.Lock()
			if job.terminal() {
				s.mu.Unlock()
				return
			}
			job.Progress = estimateProgress(s.clk.Now().Sub(job.StartedAt))
			s.mu.Unlock()
		}
	}
}

// pollCompletion watches for the worker's result independently of the
// progress cadence and finalizes exactly once.
func (s *Supervisor) pollCompletion(job *Job, resultCh <-chan mirror.Result, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case <-s.clk.After(s.completionEvery):
			select {
			case res := <-resultCh:
				s.finalize(job, res)
				return
			default:
			}
		}
	}
}

// finalize stops both pollers before the terminal state becomes visible,
// so no sub-100 progress write can land after it, then classifies the exit
// code and attaches the destination size. It is idempotent against a
// concurrent Cancel: whoever writes the terminal state first wins.
func (s *Supervisor) finalize(job *Job, res mirror.Result) {
	size, sizeErr := mediaserver.TreeSize(job.DestPath)

	s.mu.Lock()

	if job.terminal() {
		s.mu.Unlock()
		return
	}

	s.halt()

	now := s.clk.Now()
	exit := res.ExitCode
	job.EndedAt = &now
	job.ExitCode = &exit
	job.Progress = 100
	if sizeErr == nil {
		job.ResultSizeBytes = &size
	} else {
		logger.Log.Warn("destination size unavailable",
			zap.String("dst", job.DestPath),
			zap.Error(sizeErr))
	}

	switch {
	case res.ExitCode == mirror.OrchestrationExitCode:
		job.State = model.StateFailed
		if res.Err != nil {
			job.Err = res.Err.Error()
		}
	case res.ExitCode >= 8:
		job.State = model.StateCompletedWithWarnings
	default:
		job.State = model.StateCompleted
	}

	run := s.runRecord(job, res)
	s.mu.Unlock()

	s.saveRun(run)

	logger.Log.Info("backup job finished",
		zap.String("id", job.ID),
		zap.String("state", string(job.State)),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration))
}

// halt stops both pollers. Safe to call more than once.
func (s *Supervisor) halt() {
	s.stopOnce.Do(func() {
		close(s.stopPolls)
	})
}

// runRecord builds the history row for a terminal job. Caller holds the lock.
func (s *Supervisor) runRecord(job *Job, res mirror.Result) model.Run {
	run := model.Run{
		JobID:           job.ID,
		Operation:       job.Operation,
		SrcPath:         job.SourcePath,
		DstPath:         job.DestPath,
		LogPath:         job.LogPath,
		State:           job.State,
		ExitCode:        res.ExitCode,
		DurationSeconds: res.Duration.Seconds(),
		ErrMsg:          job.Err,
	}

	if job.EndedAt != nil {
		run.FinishedAt = *job.EndedAt
	}
	if job.ResultSizeBytes != nil {
		run.SizeBytes = *job.ResultSizeBytes
	}

	return run
}

func (s *Supervisor) saveRun(run model.Run) {
	if s.recorder == nil {
		return
	}

	if err := s.recorder.Save(run); err != nil {
		logger.Log.Warn("failed to save run history",
			zap.Error(err))
	}
}

func checkDestination(dest string) error {
	if dest == "" || !filepath.IsAbs(dest) {
		return fmt.Errorf("%w: %q is not an absolute path", ErrInvalidDestination, dest)
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}

	probe, err := os.CreateTemp(dest, ".plexvault-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}

	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return nil
}
