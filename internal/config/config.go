package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the agent configuration loaded from YAML with environment overrides
type Config struct {
	Env         string         `yaml:"env" env:"ATTENDANCE_ENV" env-default:"local"`
	StoragePath string         `yaml:"storage_path" env:"ATTENDANCE_STORAGE_PATH" env-default:"attendance-agent.db"`
	Log         LogConfig      `yaml:"log"`
	Backend     BackendConfig  `yaml:"backend"`
	User        UserConfig     `yaml:"user"`
	Device      DeviceConfig   `yaml:"device"`
	Location    LocationConfig `yaml:"location"`
	Status      StatusConfig   `yaml:"status"`
	Session     SessionConfig  `yaml:"session"`
	Server      ServerConfig   `yaml:"server"`
	Tray        TrayConfig     `yaml:"tray"`
	Journal     JournalConfig  `yaml:"journal"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"ATTENDANCE_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"ATTENDANCE_LOG_FORMAT" env-default:"json"`
}

// BackendConfig describes the remote attendance service
type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"ATTENDANCE_BACKEND_URL" env-required:"true"`
	Token   string `yaml:"token" env:"ATTENDANCE_TOKEN"`
	Timeout int    `yaml:"timeout" env:"ATTENDANCE_BACKEND_TIMEOUT" env-default:"15"` // seconds
}

type UserConfig struct {
	ID string `yaml:"id" env:"ATTENDANCE_USER_ID"`
}

type DeviceConfig struct {
	ID   string `yaml:"id" env:"ATTENDANCE_DEVICE_ID"`
	Name string `yaml:"name" env:"ATTENDANCE_DEVICE_NAME"`
}

// LocationConfig selects the position provider.
// Mode is one of "none", "static" or "http".
type LocationConfig struct {
	Mode       string  `yaml:"mode" env:"ATTENDANCE_LOCATION_MODE" env-default:"none"`
	Latitude   float64 `yaml:"latitude" env:"ATTENDANCE_LOCATION_LAT"`
	Longitude  float64 `yaml:"longitude" env:"ATTENDANCE_LOCATION_LON"`
	ServiceURL string  `yaml:"service_url" env:"ATTENDANCE_LOCATION_URL"`
}

type StatusConfig struct {
	TTL              time.Duration `yaml:"ttl" env:"ATTENDANCE_STATUS_TTL" env-default:"10s"`
	VisibilityMaxAge time.Duration `yaml:"visibility_max_age" env:"ATTENDANCE_VISIBILITY_MAX_AGE" env-default:"30s"`
	PollInterval     time.Duration `yaml:"poll_interval" env:"ATTENDANCE_POLL_INTERVAL" env-default:"30s"`
}

type SessionConfig struct {
	MaxInitialElapsed time.Duration `yaml:"max_initial_elapsed" env:"ATTENDANCE_MAX_INITIAL_ELAPSED" env-default:"18h"`
}

type ServerConfig struct {
	Enabled        bool     `yaml:"enabled" env:"ATTENDANCE_SERVER_ENABLED"`
	Port           int      `yaml:"port" env:"ATTENDANCE_SERVER_PORT" env-default:"47821"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ATTENDANCE_ALLOWED_ORIGINS" env-separator:","`
}

type TrayConfig struct {
	Enabled      bool   `yaml:"enabled" env:"ATTENDANCE_TRAY_ENABLED" env-default:"false"`
	DashboardURL string `yaml:"dashboard_url" env:"ATTENDANCE_DASHBOARD_URL"`
}

type JournalConfig struct {
	Retention time.Duration `yaml:"retention" env:"ATTENDANCE_JOURNAL_RETENTION" env-default:"720h"`
}

// LoadConfig reads the YAML file at path and applies env overrides and defaults
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values cleanenv cannot express as tags
func (c *Config) Validate() error {
	switch c.Location.Mode {
	case "none", "static":
	case "http":
		if c.Location.ServiceURL == "" {
			return fmt.Errorf("location.service_url is required when location.mode is http")
		}
	default:
		return fmt.Errorf("unknown location.mode %q", c.Location.Mode)
	}

	if c.Status.TTL <= 0 {
		return fmt.Errorf("status.ttl must be positive")
	}
	if c.Status.PollInterval <= 0 {
		return fmt.Errorf("status.poll_interval must be positive")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	return nil
}
