package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot asset-sentinel.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Alerting AlertingConfig `yaml:"alerting"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// StoreConfig configures access to the external event/asset store.
type StoreConfig struct {
	BaseURL    string        `yaml:"baseURL"`
	AssetsPath string        `yaml:"assetsPath"`
	EventsPath string        `yaml:"eventsPath"`
	Timeout    time.Duration `yaml:"timeout"`
	EventsTTL  time.Duration `yaml:"eventsTTL"`
}

// CacheConfig controls the Redis-backed cache and settings persistence.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"poolSize"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AlertingConfig tunes the alert lifecycle manager.
type AlertingConfig struct {
	Cooldown         time.Duration `yaml:"cooldown"`
	HistoryRetention time.Duration `yaml:"historyRetention"`
}

// MonitorConfig sets sweep cadence and the analysis window.
type MonitorConfig struct {
	AvailabilityInterval time.Duration `yaml:"availabilityInterval"`
	DowntimeInterval     time.Duration `yaml:"downtimeInterval"`
	ReliabilityInterval  time.Duration `yaml:"reliabilityInterval"`
	CleanupInterval      time.Duration `yaml:"cleanupInterval"`
	WindowDays           int           `yaml:"windowDays"`
}

// NotifyConfig holds transport settings for outbound notifications.
type NotifyConfig struct {
	SMTPHost       string        `yaml:"smtpHost"`
	SMTPPort       int           `yaml:"smtpPort"`
	SMTPUsername   string        `yaml:"smtpUsername"`
	SMTPPassword   string        `yaml:"smtpPassword"`
	SMTPFrom       string        `yaml:"smtpFrom"`
	WebhookURL     string        `yaml:"webhookURL"`
	WebhookToken   string        `yaml:"webhookToken"`
	WebhookTimeout time.Duration `yaml:"webhookTimeout"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SENTINEL_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			AssetsPath: "/api/v1/assets",
			EventsPath: "/api/v1/events/archive",
			Timeout:    5 * time.Second,
			EventsTTL:  30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:      false,
			PoolSize:     10,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Alerting: AlertingConfig{
			Cooldown:         15 * time.Minute,
			HistoryRetention: 24 * time.Hour,
		},
		Monitor: MonitorConfig{
			AvailabilityInterval: 5 * time.Minute,
			DowntimeInterval:     1 * time.Minute,
			ReliabilityInterval:  10 * time.Minute,
			CleanupInterval:      time.Hour,
			WindowDays:           30,
		},
		Notify: NotifyConfig{
			SMTPPort:       587,
			WebhookTimeout: 10 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENTINEL_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SENTINEL_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SENTINEL_STORE_BASE_URL"); v != "" {
		cfg.Store.BaseURL = v
	}
	if v := os.Getenv("SENTINEL_STORE_ASSETS_PATH"); v != "" {
		cfg.Store.AssetsPath = v
	}
	if v := os.Getenv("SENTINEL_STORE_EVENTS_PATH"); v != "" {
		cfg.Store.EventsPath = v
	}
	if v := os.Getenv("SENTINEL_STORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.Timeout = d
		}
	}
	if v := os.Getenv("SENTINEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SENTINEL_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SENTINEL_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("SENTINEL_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("SENTINEL_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("SENTINEL_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("SENTINEL_ALERT_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Alerting.Cooldown = d
		}
	}
	if v := os.Getenv("SENTINEL_HISTORY_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Alerting.HistoryRetention = d
		}
	}
	if v := os.Getenv("SENTINEL_MONITOR_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.Monitor.WindowDays = days
		}
	}
	if v := os.Getenv("SENTINEL_SMTP_HOST"); v != "" {
		cfg.Notify.SMTPHost = v
	}
	if v := os.Getenv("SENTINEL_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Notify.SMTPPort = port
		}
	}
	if v := os.Getenv("SENTINEL_SMTP_USERNAME"); v != "" {
		cfg.Notify.SMTPUsername = v
	}
	if v := os.Getenv("SENTINEL_SMTP_PASSWORD"); v != "" {
		cfg.Notify.SMTPPassword = v
	}
	if v := os.Getenv("SENTINEL_SMTP_FROM"); v != "" {
		cfg.Notify.SMTPFrom = v
	}
	if v := os.Getenv("SENTINEL_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("SENTINEL_WEBHOOK_TOKEN"); v != "" {
		cfg.Notify.WebhookToken = v
	}
}
