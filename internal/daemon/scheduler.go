package daemon

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"plexvault/internal/backup"
	"plexvault/internal/config"
	"plexvault/internal/logger"
	"plexvault/internal/mediaserver"
	"plexvault/internal/model"
)

// Scheduler runs the configured periodic backups. A schedule firing while
// a job is still in flight is skipped, not queued.
type Scheduler struct {
	cron       *cron.Cron
	supervisor *backup.Supervisor
	cfg        *config.Config
}

func NewScheduler(supervisor *backup.Supervisor, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		supervisor: supervisor,
		cfg:        cfg,
	}
}

func (s *Scheduler) Start() error {
	for _, sched := range s.cfg.Schedules {
		op, err := model.ParseOperation(sched.Operation)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", sched.Cron, err)
		}

		dest := sched.Destination
		spec := sched.Cron

		if _, err := s.cron.AddFunc(spec, func() {
			s.runScheduled(op, dest, spec)
		}); err != nil {
			return fmt.Errorf("schedule %q: %w", spec, err)
		}

		logger.Log.Info("backup schedule registered",
			zap.String("cron", spec),
			zap.String("operation", string(op)),
			zap.String("destination", dest))
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled(op model.Operation, dest, spec string) {
	logPath := filepath.Join(s.cfg.LogDir, fmt.Sprintf("scheduled-%s.log", time.Now().Format("20060102-150405")))

	_, err := s.supervisor.Start(backup.StartRequest{
		Operation:   op,
		SourcePath:  s.cfg.SourceRoot,
		DestPath:    filepath.Join(dest, mediaserver.AppDirName),
		LogPath:     logPath,
		StopService: op.StopsService(),
	})

	if errors.Is(err, backup.ErrAlreadyRunning) {
		logger.Log.Warn("scheduled backup skipped, job already running",
			zap.String("cron", spec))
		return
	}
	if err != nil {
		logger.Log.Error("scheduled backup failed to start",
			zap.String("cron", spec),
			zap.Error(err))
	}
}
