package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	TLS       TLSConfig       `yaml:"tls"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedHosts   []string `yaml:"allowed_hosts"`
}

type DatabaseConfig struct {
	// URL takes precedence over the individual connection fields.
	URL            string `yaml:"url"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"name"`
	SSLMode        string `yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
}

// SweepConfig controls how long checked-off items survive.
type SweepConfig struct {
	RetentionDays int    `yaml:"retention_days"`
	Timezone      string `yaml:"timezone"`
}

type SchedulerConfig struct {
	Enabled       bool          `yaml:"enabled"`
	ScheduleTimes []string      `yaml:"times"`
	WorkerCount   int           `yaml:"workers"`
	JobDelay      time.Duration `yaml:"job_delay"`
	QueueSize     int           `yaml:"queue_size"`
	RunOnStartup  bool          `yaml:"run_on_startup"`
}

type TLSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	CertPath     string `yaml:"cert_path"`
	KeyPath      string `yaml:"key_path"`
	RedirectHTTP bool   `yaml:"redirect_http"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	Environment  string  `yaml:"environment"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	MetricsPort  string  `yaml:"metrics_port"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3030",
			Host: "127.0.0.1",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "grocery",
			DBName:         "grocery",
			SSLMode:        "disable",
			MaxConnections: 5,
		},
		Sweep: SweepConfig{
			RetentionDays: 0,
			Timezone:      "UTC",
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			ScheduleTimes: []string{"00:05"},
			WorkerCount:   1,
			JobDelay:      time.Second,
			QueueSize:     10,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "grocery-api",
			Environment:  "development",
			OTLPEndpoint: "localhost:4317",
			MetricsPort:  "9464",
			SampleRatio:  1,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.AllowedOrigins = getListEnv("ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.AllowedHosts = getListEnv("ALLOWED_HOSTS", c.Server.AllowedHosts)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	if c.Database.Port, err = getIntEnv("DB_PORT", c.Database.Port); err != nil {
		return err
	}
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	if c.Database.MaxConnections, err = getIntEnv("DB_MAX_CONNECTIONS", c.Database.MaxConnections); err != nil {
		return err
	}

	if c.Sweep.RetentionDays, err = getIntEnv("SWEEP_RETENTION_DAYS", c.Sweep.RetentionDays); err != nil {
		return err
	}
	c.Sweep.Timezone = getEnv("SWEEP_TIMEZONE", c.Sweep.Timezone)

	c.Scheduler.Enabled = getBoolEnv("SCHEDULER_ENABLED", c.Scheduler.Enabled)
	c.Scheduler.ScheduleTimes = getListEnv("SCHEDULER_TIMES", c.Scheduler.ScheduleTimes)
	if c.Scheduler.WorkerCount, err = getIntEnv("SCHEDULER_WORKERS", c.Scheduler.WorkerCount); err != nil {
		return err
	}
	if v := os.Getenv("SCHEDULER_JOB_DELAY"); v != "" {
		if c.Scheduler.JobDelay, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
		}
	}
	if c.Scheduler.QueueSize, err = getIntEnv("SCHEDULER_QUEUE_SIZE", c.Scheduler.QueueSize); err != nil {
		return err
	}
	c.Scheduler.RunOnStartup = getBoolEnv("SCHEDULER_RUN_ON_STARTUP", c.Scheduler.RunOnStartup)

	c.TLS.Enabled = getBoolEnv("TLS_ENABLED", c.TLS.Enabled)
	c.TLS.CertPath = getEnv("TLS_CERT_PATH", c.TLS.CertPath)
	c.TLS.KeyPath = getEnv("TLS_KEY_PATH", c.TLS.KeyPath)
	c.TLS.RedirectHTTP = getBoolEnv("TLS_REDIRECT_HTTP", c.TLS.RedirectHTTP)

	c.Telemetry.Enabled = getBoolEnv("OTEL_ENABLED", c.Telemetry.Enabled)
	c.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Telemetry.Environment = getEnv("OTEL_ENVIRONMENT", c.Telemetry.Environment)
	c.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.MetricsPort = getEnv("METRICS_PORT", c.Telemetry.MetricsPort)
	if v := os.Getenv("OTEL_SAMPLE_RATIO"); v != "" {
		if c.Telemetry.SampleRatio, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %w", err)
		}
	}

	return nil
}

// Validate checks the values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Database.MaxConnections <= 0 {
		return errors.New("DB_MAX_CONNECTIONS must be greater than zero")
	}
	if c.Sweep.RetentionDays < 0 {
		return errors.New("SWEEP_RETENTION_DAYS cannot be negative")
	}
	if _, err := time.LoadLocation(c.Sweep.Timezone); err != nil {
		return fmt.Errorf("invalid SWEEP_TIMEZONE %q: %w", c.Sweep.Timezone, err)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.Scheduler.Enabled && len(c.Scheduler.ScheduleTimes) == 0 {
		return errors.New("SCHEDULER_TIMES is required when SCHEDULER_ENABLED=true")
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return errors.New("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return errors.New("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return nil
}

// DSN returns DATABASE_URL when set, otherwise a lib/pq key=value string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return c.ConnectionString()
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// getListEnv splits a comma-separated variable, dropping empty entries.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var list []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			list = append(list, part)
		}
	}
	return list
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
