package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"plexvault/internal/mediaserver"
)

type Schedule struct {
	Cron        string `mapstructure:"cron"`
	Operation   string `mapstructure:"operation"`
	Destination string `mapstructure:"destination"`
}

type Config struct {
	DaemonPort       int        `mapstructure:"daemon_port"`
	SourceRoot       string     `mapstructure:"source_root"`
	DBPath           string     `mapstructure:"db_path"`
	LogDir           string     `mapstructure:"log_dir"`
	ServiceName      string     `mapstructure:"service_name"`
	MirrorTool       string     `mapstructure:"mirror_tool"`
	StopGraceSeconds int        `mapstructure:"stop_grace_seconds"`
	Schedules        []Schedule `mapstructure:"schedules"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".plexvault")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetDefault("daemon_port", 9410)
	viper.SetDefault("source_root", mediaserver.DefaultDataDir())
	viper.SetDefault("db_path", filepath.Join(configDir, "plexvault.db"))
	viper.SetDefault("log_dir", filepath.Join(configDir, "logs"))
	viper.SetDefault("service_name", mediaserver.DefaultServiceName())
	viper.SetDefault("mirror_tool", "robocopy")
	viper.SetDefault("stop_grace_seconds", 3)

	viper.SetEnvPrefix("PLEXVAULT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
