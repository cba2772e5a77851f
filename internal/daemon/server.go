package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"plexvault/internal/backup"
	"plexvault/internal/config"
	"plexvault/internal/logger"
	"plexvault/internal/mediaserver"
	"plexvault/internal/model"
	"plexvault/internal/repository"
	"plexvault/internal/volumes"
)

type Server struct {
	echo       *echo.Echo
	supervisor *backup.Supervisor
	runRepo    *repository.RunRepository
	cfg        *config.Config
	stopCh     chan struct{}
}

func NewServer(supervisor *backup.Supervisor, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		supervisor: supervisor,
		runRepo:    repository.NewRunRepository(),
		cfg:        cfg,
		stopCh:     make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// For the entire daemon
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)

	// For the single backup job slot
	g := s.echo.Group("/backup")
	g.POST("", s.handleStartBackup)
	g.GET("", s.handleGetBackup)
	g.POST("/cancel", s.handleCancelBackup)

	// Collaborators
	s.echo.GET("/volumes", s.handleVolumes)
	s.echo.GET("/estimate", s.handleEstimate)
	s.echo.GET("/history", s.handleHistory)
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.cfg.DaemonPort)
		logger.Log.Info("daemon server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("daemon server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.supervisor.Cancel()
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := map[string]any{
		"busy": s.supervisor.Busy(),
	}
	if snap, ok := s.supervisor.Snapshot(); ok {
		resp["job"] = snap
	}
	if stats, err := s.runRepo.GetStats(); err == nil {
		resp["runs"] = stats
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStop(c echo.Context) error {
	s.stopCh <- struct{}{}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

type startBackupRequest struct {
	Operation   string `json:"operation"`
	Destination string `json:"destination"`
	LogPath     string `json:"log_path"`
	StopService *bool  `json:"stop_service"`
}

func (s *Server) handleStartBackup(c echo.Context) error {
	var req startBackupRequest
	if err := c.Bind(&req); err != nil || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "operation and destination required"})
	}

	op, err := model.ParseOperation(req.Operation)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	stopService := op.StopsService()
	if req.StopService != nil {
		stopService = *req.StopService
	}

	logPath := req.LogPath
	if logPath == "" {
		logPath = filepath.Join(s.cfg.LogDir, fmt.Sprintf("backup-%s.log", time.Now().Format("20060102-150405")))
	}

	snap, err := s.supervisor.Start(backup.StartRequest{
		Operation:   op,
		SourcePath:  s.cfg.SourceRoot,
		DestPath:    filepath.Join(req.Destination, mediaserver.AppDirName),
		LogPath:     logPath,
		StopService: stopService,
	})

	switch {
	case errors.Is(err, backup.ErrAlreadyRunning):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, backup.ErrInvalidDestination):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, snap)
}

func (s *Server) handleGetBackup(c echo.Context) error {
	snap, ok := s.supervisor.Snapshot()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no backup job"})
	}

	return c.JSON(http.StatusOK, snap)
}

func (s *Server) handleCancelBackup(c echo.Context) error {
	s.supervisor.Cancel()
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleVolumes(c echo.Context) error {
	vols, err := volumes.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"volumes": vols})
}

func (s *Server) handleEstimate(c echo.Context) error {
	size, err := mediaserver.QuickSize(s.cfg.SourceRoot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"source_root":     s.cfg.SourceRoot,
		"estimated_bytes": size,
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	if failed, _ := strconv.ParseBool(c.QueryParam("failed")); failed {
		runs, err := s.runRepo.GetFailed()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, runs)
	}

	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil {
			n = parsed
		}
	}

	runs, err := s.runRepo.GetRecent(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, runs)
}
