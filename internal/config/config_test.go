package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func loadIsolated(t *testing.T) *Config {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadIsolated(t)

	if cfg.DaemonPort != 9410 {
		t.Errorf("daemon_port = %d, want 9410", cfg.DaemonPort)
	}
	if cfg.MirrorTool != "robocopy" {
		t.Errorf("mirror_tool = %q, want robocopy", cfg.MirrorTool)
	}
	if cfg.StopGraceSeconds != 3 {
		t.Errorf("stop_grace_seconds = %d, want 3", cfg.StopGraceSeconds)
	}
	if cfg.SourceRoot == "" {
		t.Error("source_root default is empty")
	}
	if cfg.ServiceName == "" {
		t.Error("service_name default is empty")
	}
	if filepath.Base(cfg.DBPath) != "plexvault.db" {
		t.Errorf("db_path = %q, want a plexvault.db path", cfg.DBPath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PLEXVAULT_DAEMON_PORT", "19410")
	t.Setenv("PLEXVAULT_MIRROR_TOOL", "rsync-mirror")

	cfg := loadIsolated(t)

	if cfg.DaemonPort != 19410 {
		t.Errorf("daemon_port = %d, want env override 19410", cfg.DaemonPort)
	}
	if cfg.MirrorTool != "rsync-mirror" {
		t.Errorf("mirror_tool = %q, want env override", cfg.MirrorTool)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	configDir := filepath.Join(home, ".plexvault")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `daemon_port: 8800
log_dir: /var/log/plexvault
schedules:
  - cron: "0 3 * * *"
    operation: cold
    destination: /mnt/backup
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DaemonPort != 8800 {
		t.Errorf("daemon_port = %d, want 8800", cfg.DaemonPort)
	}
	if cfg.LogDir != "/var/log/plexvault" {
		t.Errorf("log_dir = %q", cfg.LogDir)
	}
	if len(cfg.Schedules) != 1 {
		t.Fatalf("schedules = %d entries, want 1", len(cfg.Schedules))
	}
	if s := cfg.Schedules[0]; s.Cron != "0 3 * * *" || s.Operation != "cold" || s.Destination != "/mnt/backup" {
		t.Errorf("schedule = %+v", s)
	}
}
