package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plexvault/internal/backup"
	"plexvault/internal/daemon"
	"plexvault/internal/logger"
	"plexvault/internal/mediaserver"
	"plexvault/internal/mirror"
	"plexvault/internal/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backup daemon",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return err
	}

	if _, err := os.Stat(cfg.SourceRoot); err != nil {
		found, derr := mediaserver.Discover()
		if derr != nil {
			return fmt.Errorf("source data directory %s: %w", cfg.SourceRoot, err)
		}

		logger.Log.Warn("configured source root missing, using discovered data directory",
			zap.String("configured", cfg.SourceRoot),
			zap.String("discovered", found))
		cfg.SourceRoot = found
	}

	controller := mediaserver.NewController(cfg.ServiceName)
	grace := time.Duration(cfg.StopGraceSeconds) * time.Second
	runner := mirror.NewRunner(cfg.MirrorTool, controller, func(ctx context.Context) error {
		return mediaserver.WaitForQuiescence(ctx, cfg.SourceRoot, grace)
	})

	supervisor := backup.NewSupervisor(runner,
		backup.WithRecorder(repository.NewRunRepository()))

	scheduler := daemon.NewScheduler(supervisor, cfg)
	if err := scheduler.Start(); err != nil {
		return err
	}

	srv := daemon.NewServer(supervisor, cfg)
	srv.Start()

	logger.Log.Info("plexvault daemon started",
		zap.Int("port", cfg.DaemonPort),
		zap.String("source_root", cfg.SourceRoot),
		zap.Int("schedules", len(cfg.Schedules)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
