// Package daemon manages the sheep daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/logging"
	"github.com/sleepsheep/sheep/internal/timemath"
	"github.com/sleepsheep/sheep/internal/validation"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Scoring   ScoringConfig   `toml:"scoring"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port" validate:"gte=1,lte=65535"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig selects and configures the state store.
type StorageConfig struct {
	Backend     string `toml:"backend" validate:"oneof=sqlite postgres redis"`
	Dir         string `toml:"dir"`
	PostgresDSN string `toml:"postgres_dsn"`
	RedisAddr   string `toml:"redis_addr"`
	RedisDB     int    `toml:"redis_db" validate:"gte=0"`
	RedisPrefix string `toml:"redis_prefix"`
}

// ScheduleConfig is the default sleep schedule and the local timezone.
type ScheduleConfig struct {
	Timezone        string `toml:"timezone"`
	BedtimeTarget   string `toml:"bedtime_target" validate:"hhmm"`
	WakeTimeTarget  string `toml:"wake_time_target" validate:"hhmm"`
	Notifications   bool   `toml:"notifications"`
	CheckInInterval int    `toml:"check_in_interval" validate:"gte=1,lte=240"`
}

// ScoringConfig tunes session scoring.
type ScoringConfig struct {
	ExpectedCheckIns int    `toml:"expected_check_ins" validate:"gte=1"`
	StreakBonus      string `toml:"streak_bonus" validate:"oneof=tiered simple"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level" validate:"oneof=debug info warn error"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// TelemetryConfig controls the metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	homeDir := sheepHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			Dir:         homeDir,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "sheep",
		},
		Schedule: ScheduleConfig{
			Timezone:        "Local",
			BedtimeTarget:   "22:00",
			WakeTimeTarget:  "07:00",
			Notifications:   true,
			CheckInInterval: 30,
		},
		Scoring: ScoringConfig{
			ExpectedCheckIns: 6,
			StreakBonus:      "tiered",
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(homeDir, "sheep.log"),
			MaxSizeMB: 50,
			MaxFiles:  5,
		},
	}
}

// LoadConfig reads config from $SHEEP_HOME/config.toml, falling back to
// defaults, then applies environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(sheepHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to $SHEEP_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(sheepHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks field ranges and cross-field requirements.
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := timemath.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Schedule.Timezone, err)
	}
	switch c.Storage.Backend {
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("invalid config: storage.postgres_dsn is required for the postgres backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("invalid config: storage.redis_addr is required for the redis backend")
		}
	}
	return nil
}

// DefaultSettings is the schedule users start with.
func (c Config) DefaultSettings() domain.UserSettings {
	return domain.UserSettings{
		BedtimeTarget:          c.Schedule.BedtimeTarget,
		WakeTimeTarget:         c.Schedule.WakeTimeTarget,
		NotificationEnabled:    c.Schedule.Notifications,
		CheckInIntervalMinutes: c.Schedule.CheckInInterval,
	}
}

// LoggerConfig maps the logging section onto the logger.
func (c Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		File:      c.Logging.File,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SHEEP_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SHEEP_POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("SHEEP_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("SHEEP_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// sheepHome returns the sheep data directory.
func sheepHome() string {
	if env := os.Getenv("SHEEP_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sheep")
}

// SheepHome is exported for use by other packages.
func SheepHome() string {
	return sheepHome()
}
