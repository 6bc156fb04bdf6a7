package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Database   DatabaseConfig   `yaml:"database"`
	Mail       MailConfig       `yaml:"mail"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Timezone   string           `yaml:"timezone"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// MonitorConfig holds the door monitoring configuration. Pin numbers are
// GPIO character device line offsets.
type MonitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	PollIntervalMs  int           `yaml:"poll_interval_ms"`
	PollInterval    time.Duration `yaml:"-"` // Ignored by YAML parser
	BlinkIntervalMs int           `yaml:"blink_interval_ms"`
	BlinkInterval   time.Duration `yaml:"-"`
	Chip            string        `yaml:"chip"`
	SensorPin       int           `yaml:"sensor_pin"`
	ReadyPin        int           `yaml:"ready_pin"`
	WarningPin      int           `yaml:"warning_pin"`
	AlarmPin        int           `yaml:"alarm_pin"`
}

// MailConfig holds the outbound SMTP transport configuration. Credentials and
// recipients live in the database and are managed through the admin API.
type MailConfig struct {
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	FacilityLabel string `yaml:"facility_label"`
	LocationLabel string `yaml:"location_label"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DatabaseConfig holds the database connection configuration. A DSN starting
// with "postgres://" (or containing "host=") selects the Postgres driver;
// anything else is treated as an SQLite file path.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Monitor.PollIntervalMs <= 0 {
		cfg.Monitor.PollIntervalMs = 100
	}
	cfg.Monitor.PollInterval = time.Duration(cfg.Monitor.PollIntervalMs) * time.Millisecond

	if cfg.Monitor.BlinkIntervalMs <= 0 {
		cfg.Monitor.BlinkIntervalMs = 500
	}
	cfg.Monitor.BlinkInterval = time.Duration(cfg.Monitor.BlinkIntervalMs) * time.Millisecond

	if cfg.Monitor.Chip == "" {
		cfg.Monitor.Chip = "gpiochip0"
	}
	if cfg.Monitor.SensorPin <= 0 {
		cfg.Monitor.SensorPin = 11
	}
	if cfg.Monitor.ReadyPin <= 0 {
		cfg.Monitor.ReadyPin = 22
	}
	if cfg.Monitor.WarningPin <= 0 {
		cfg.Monitor.WarningPin = 13
	}
	if cfg.Monitor.AlarmPin <= 0 {
		cfg.Monitor.AlarmPin = 16
	}

	if cfg.Mail.SMTPHost == "" {
		cfg.Mail.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Mail.SMTPPort <= 0 {
		cfg.Mail.SMTPPort = 587
	}
	if cfg.Mail.LocationLabel == "" {
		cfg.Mail.LocationLabel = "Main Door Security System"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	return &cfg, nil
}
