package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fastygo/regioncheck/domain"
)

// FileEnv names the environment variable pointing at an optional YAML file.
const FileEnv = "REGIONCHECK_CONFIG"

// Config aggregates all runtime settings required by the harness.
type Config struct {
	AppName     string        `yaml:"app_name"`
	Environment string        `yaml:"environment"`
	API         APIConfig     `yaml:"api"`
	Region      domain.Region `yaml:"region"`
	Threshold   float64       `yaml:"completion_threshold"`
	Report      ReportConfig  `yaml:"report"`
	Run         RunConfig     `yaml:"run"`
	HTTP        HTTPConfig    `yaml:"http"`
	Context     ContextConfig `yaml:"context"`
	Logger      LoggerConfig  `yaml:"logger"`
}

type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxConns int           `yaml:"max_conns"`
}

type ReportConfig struct {
	Dir           string `yaml:"dir"`
	CSV           bool   `yaml:"csv"`
	JSON          bool   `yaml:"json"`
	HTML          bool   `yaml:"html"`
	RetentionDays int    `yaml:"retention_days"`
}

type RunConfig struct {
	Parallel   bool   `yaml:"parallel"`
	MaxWorkers int    `yaml:"max_workers"`
	Schedule   string `yaml:"schedule"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
}

type ContextConfig struct {
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	criteria := domain.DefaultCriteria()
	return &Config{
		AppName:     "regioncheck",
		Environment: "development",
		API: APIConfig{
			BaseURL:  "http://jsonplaceholder.typicode.com",
			Timeout:  30 * time.Second,
			MaxConns: 16,
		},
		Region:    criteria.Region,
		Threshold: criteria.Threshold,
		Report: ReportConfig{
			Dir:           "reports",
			CSV:           true,
			JSON:          true,
			HTML:          true,
			RetentionDays: 7,
		},
		Run: RunConfig{
			Parallel:   false,
			MaxWorkers: 4,
			Schedule:   "@every 5m",
		},
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			RateLimit:       1,
			RateBurst:       5,
			MonitorInterval: 30 * time.Second,
		},
		Context: ContextConfig{
			RequestTimeout:  45 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load reads configuration from, in increasing precedence: built-in
// defaults, the YAML file named by REGIONCHECK_CONFIG, and environment
// variables (optionally seeded from .env).
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Defaults()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppName = getString("APP_NAME", c.AppName)
	c.Environment = getString("APP_ENV", c.Environment)

	c.API.BaseURL = getString("API_BASE_URL", c.API.BaseURL)
	c.API.Timeout = getDuration("API_TIMEOUT", c.API.Timeout)
	c.API.MaxConns = getInt("API_MAX_CONNS", c.API.MaxConns)

	c.Region.LatMin = getFloat("REGION_LAT_MIN", c.Region.LatMin)
	c.Region.LatMax = getFloat("REGION_LAT_MAX", c.Region.LatMax)
	c.Region.LngMin = getFloat("REGION_LNG_MIN", c.Region.LngMin)
	c.Region.LngMax = getFloat("REGION_LNG_MAX", c.Region.LngMax)
	c.Threshold = getFloat("COMPLETION_THRESHOLD", c.Threshold)

	c.Report.Dir = getString("REPORT_DIR", c.Report.Dir)
	c.Report.CSV = getBool("GENERATE_CSV_REPORT", c.Report.CSV)
	c.Report.JSON = getBool("GENERATE_JSON_REPORT", c.Report.JSON)
	c.Report.HTML = getBool("GENERATE_HTML_REPORT", c.Report.HTML)
	c.Report.RetentionDays = getInt("REPORT_RETENTION_DAYS", c.Report.RetentionDays)

	c.Run.Parallel = getBool("RUN_PARALLEL", c.Run.Parallel)
	c.Run.MaxWorkers = getInt("MAX_WORKERS", c.Run.MaxWorkers)
	c.Run.Schedule = getString("RUN_SCHEDULE", c.Run.Schedule)

	c.HTTP.Host = getString("SERVER_HOST", c.HTTP.Host)
	c.HTTP.Port = getString("SERVER_PORT", c.HTTP.Port)
	c.HTTP.ReadTimeout = getDuration("SERVER_READ_TIMEOUT", c.HTTP.ReadTimeout)
	c.HTTP.WriteTimeout = getDuration("SERVER_WRITE_TIMEOUT", c.HTTP.WriteTimeout)
	c.HTTP.IdleTimeout = getDuration("SERVER_IDLE_TIMEOUT", c.HTTP.IdleTimeout)
	c.HTTP.RateLimit = getFloat("SERVER_RATE_LIMIT", c.HTTP.RateLimit)
	c.HTTP.RateBurst = getInt("SERVER_RATE_BURST", c.HTTP.RateBurst)
	c.HTTP.MonitorInterval = getDuration("MONITOR_INTERVAL", c.HTTP.MonitorInterval)

	c.Context.RequestTimeout = getDuration("REQUEST_TIMEOUT_SECONDS", c.Context.RequestTimeout)
	c.Context.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT_SECONDS", c.Context.ShutdownTimeout)

	c.Logger.Level = getString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Encoding = getString("LOG_ENCODING", c.Logger.Encoding)
}

// Validate rejects settings the harness cannot run with.
func (c *Config) Validate() error {
	if err := c.Criteria().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL must not be empty")
	}
	if c.Run.MaxWorkers <= 0 {
		return fmt.Errorf("config: MAX_WORKERS must be positive, got %d", c.Run.MaxWorkers)
	}
	return nil
}

// Criteria returns the region and threshold a validation run is judged by.
func (c *Config) Criteria() domain.Criteria {
	return domain.Criteria{Region: c.Region, Threshold: c.Threshold}
}

// Address returns the HTTP listen address for the report server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
