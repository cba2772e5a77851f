package mirror

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestArgsContract(t *testing.T) {
	req := Request{
		Source:  "/data/Plex Media Server",
		Dest:    "/backup/Plex Media Server",
		LogPath: "/var/log/plexvault/copy.log",
	}

	want := []string{
		"/data/Plex Media Server",
		"/backup/Plex Media Server",
		"/MIR",
		"/R:3",
		"/W:5",
		"/MT:8",
		"/XD", filepath.Join("/data/Plex Media Server", "Cache", "Transcode"),
		"/XF", "*.tmp",
		"/NP",
		"/LOG:/var/log/plexvault/copy.log",
	}

	if got := Args(req); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v\nwant %v", got, want)
	}
}

type fakeController struct {
	mu          sync.Mutex
	stopErr     error
	stopCalled  bool
	startCalled bool
}

func (c *fakeController) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCalled = true
	return c.stopErr
}

func (c *fakeController) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startCalled = true
	return nil
}

func TestRunMissingToolIsOrchestrationFailure(t *testing.T) {
	r := NewRunner("plexvault-no-such-tool", nil, nil)

	res := r.Run(context.Background(), Request{
		Source:  t.TempDir(),
		Dest:    t.TempDir(),
		LogPath: filepath.Join(t.TempDir(), "copy.log"),
	})

	if res.ExitCode != OrchestrationExitCode {
		t.Errorf("exit code = %d, want %d", res.ExitCode, OrchestrationExitCode)
	}
	if res.Err == nil {
		t.Error("expected a launch error")
	}
	if res.Duration != 0 {
		t.Errorf("duration = %v, want 0 for orchestration failure", res.Duration)
	}
}

func TestRunRestartsServiceDespiteFailures(t *testing.T) {
	// The stop failing must not abort the bracket, and the restart must
	// be attempted even though the copy itself could not launch.
	svc := &fakeController{stopErr: context.DeadlineExceeded}
	r := NewRunner("plexvault-no-such-tool", svc, nil)

	res := r.Run(context.Background(), Request{
		Source:      t.TempDir(),
		Dest:        t.TempDir(),
		LogPath:     filepath.Join(t.TempDir(), "copy.log"),
		StopService: true,
	})

	if res.ExitCode != OrchestrationExitCode {
		t.Errorf("exit code = %d, want %d", res.ExitCode, OrchestrationExitCode)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if !svc.stopCalled {
		t.Error("service stop was never attempted")
	}
	if !svc.startCalled {
		t.Error("service restart was not attempted after a failed copy")
	}
}

func TestRunSkipsServiceBracketForHotCopy(t *testing.T) {
	svc := &fakeController{}
	r := NewRunner("plexvault-no-such-tool", svc, nil)

	_ = r.Run(context.Background(), Request{
		Source:  t.TempDir(),
		Dest:    t.TempDir(),
		LogPath: filepath.Join(t.TempDir(), "copy.log"),
	})

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.stopCalled || svc.startCalled {
		t.Error("service bracket must not run when StopService is false")
	}
}
