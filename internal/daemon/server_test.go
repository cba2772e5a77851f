package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"plexvault/internal/backup"
	"plexvault/internal/config"
	"plexvault/internal/db"
	"plexvault/internal/mirror"
	"plexvault/internal/model"
)

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, req mirror.Request) mirror.Result {
	// Pretend to be a long copy until the job is cancelled.
	<-ctx.Done()
	return mirror.Result{ExitCode: -1, Err: ctx.Err()}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	if err := db.Init(filepath.Join(t.TempDir(), "daemon.db")); err != nil {
		t.Fatal(err)
	}

	sup := backup.NewSupervisor(stubRunner{},
		backup.WithIntervals(5*time.Millisecond, time.Millisecond))

	cfg := &config.Config{
		DaemonPort: 0,
		SourceRoot: t.TempDir(),
		LogDir:     t.TempDir(),
	}

	srv := NewServer(sup, cfg)
	t.Cleanup(sup.Cancel)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestStatusIdle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if busy, _ := resp["busy"].(bool); busy {
		t.Error("idle daemon reported busy")
	}
	if _, ok := resp["job"]; ok {
		t.Error("idle daemon reported a job")
	}
}

func TestGetBackupWithoutJob(t *testing.T) {
	srv := newTestServer(t)

	if rec := doJSON(t, srv, http.MethodGet, "/backup", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStartBackupLifecycle(t *testing.T) {
	srv := newTestServer(t)
	dest := t.TempDir()

	body := `{"operation": "cold", "destination": "` + dest + `"}`
	rec := doJSON(t, srv, http.MethodPost, "/backup", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var snap model.JobSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != model.StateRunning {
		t.Errorf("state = %s, want %s", snap.State, model.StateRunning)
	}
	if snap.ID == "" {
		t.Error("job snapshot has no id")
	}
	if !snap.StopService {
		t.Error("cold copy should default to a service pause")
	}

	// Second start while running is rejected.
	if rec := doJSON(t, srv, http.MethodPost, "/backup", body); rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rec.Code)
	}

	// The slot is observable while in flight.
	if rec := doJSON(t, srv, http.MethodGet, "/backup", ""); rec.Code != http.StatusOK {
		t.Errorf("get backup status = %d, want 200", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/backup/cancel", ""); rec.Code != http.StatusOK {
		t.Errorf("cancel status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/backup", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != model.StateCancelled {
		t.Errorf("state after cancel = %s, want %s", snap.State, model.StateCancelled)
	}
}

func TestStartBackupValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing destination", `{"operation": "hot"}`},
		{"unknown operation", `{"operation": "warm", "destination": "/tmp"}`},
		{"relative destination", `{"operation": "hot", "destination": "backups"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := doJSON(t, srv, http.MethodPost, "/backup", tc.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestStartBackupStopServiceOverride(t *testing.T) {
	srv := newTestServer(t)
	dest := t.TempDir()

	body := `{"operation": "cold", "destination": "` + dest + `", "stop_service": false}`
	rec := doJSON(t, srv, http.MethodPost, "/backup", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var snap model.JobSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.StopService {
		t.Error("explicit stop_service=false was not honored")
	}
}

func TestEstimateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/estimate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SourceRoot     string `json:"source_root"`
		EstimatedBytes int64  `json:"estimated_bytes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SourceRoot != srv.cfg.SourceRoot {
		t.Errorf("source_root = %q, want %q", resp.SourceRoot, srv.cfg.SourceRoot)
	}
}

func TestHistoryEmpty(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var runs []model.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs from a fresh db, want 0", len(runs))
	}
}

func TestStopSignalsChannel(t *testing.T) {
	srv := newTestServer(t)

	if rec := doJSON(t, srv, http.MethodPost, "/stop", ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	select {
	case <-srv.StopCh():
	case <-time.After(time.Second):
		t.Error("stop request did not signal the stop channel")
	}
}
