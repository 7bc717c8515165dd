package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML
// config file. Environment variables override values from the file.
const ConfigFileEnv = "DOCPARSE_CONFIG"

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Server      ServerConfig      `yaml:"server"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Redis       RedisConfig       `yaml:"redis"`
	Log         LogConfig         `yaml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // postgres or sqlite
	DSN              string        `yaml:"dsn"`
	SQLitePath       string        `yaml:"sqlite_path"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// ClassifierConfig holds the similarity model constants.
type ClassifierConfig struct {
	Threshold       float64 `yaml:"threshold"`
	FontBonus       float64 `yaml:"font_bonus"`
	IdentityPenalty float64 `yaml:"identity_penalty"`
	FormBonus       float64 `yaml:"form_bonus"`
}

// FingerprintConfig holds layout feature settings.
type FingerprintConfig struct {
	HeaderBand   float64 `yaml:"header_band"`
	FooterBand   float64 `yaml:"footer_band"`
	KeywordsFile string  `yaml:"keywords_file"`
}

// PipelineConfig holds document processing settings.
type PipelineConfig struct {
	ProfilesPath   string        `yaml:"profiles_path"`
	ExemplarRoot   string        `yaml:"exemplar_root"`
	Inbox          string        `yaml:"inbox"`
	Outbox         string        `yaml:"outbox"`
	XLSXPath       string        `yaml:"xlsx_path"`
	Class          string        `yaml:"class"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
	Debounce       time.Duration `yaml:"debounce"`
}

// RedisConfig holds the optional job list settings.
type RedisConfig struct {
	URL     string `yaml:"url"`
	ListKey string `yaml:"list_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          "postgres",
			SQLitePath:      "docparse.db",
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr:    ":8080",
			MetricsAddr: ":9090",
		},
		Classifier: ClassifierConfig{
			Threshold:       0.85,
			FontBonus:       0.05,
			IdentityPenalty: 0.5,
			FormBonus:       0.5,
		},
		Fingerprint: FingerprintConfig{
			HeaderBand: 0.2,
			FooterBand: 0.2,
		},
		Pipeline: PipelineConfig{
			ProfilesPath:   "template_profiles.json",
			ExemplarRoot:   "known_templates",
			Inbox:          "inbox",
			Outbox:         "outputs",
			Class:          "auto",
			Workers:        4,
			QueueSize:      64,
			ProcessTimeout: 60 * time.Second,
			Debounce:       500 * time.Millisecond,
		},
		Redis: RedisConfig{
			ListKey: "docparse:jobs",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by DOCPARSE_CONFIG, and environment variables, in that order.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s", path), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = getEnv("METRICS_ADDR", c.Server.MetricsAddr)

	c.Classifier.Threshold = getEnvAsFloat64("CLASSIFIER_THRESHOLD", c.Classifier.Threshold)
	c.Classifier.FontBonus = getEnvAsFloat64("CLASSIFIER_FONT_BONUS", c.Classifier.FontBonus)
	c.Classifier.IdentityPenalty = getEnvAsFloat64("CLASSIFIER_IDENTITY_PENALTY", c.Classifier.IdentityPenalty)
	c.Classifier.FormBonus = getEnvAsFloat64("CLASSIFIER_FORM_BONUS", c.Classifier.FormBonus)

	c.Fingerprint.HeaderBand = getEnvAsFloat64("FP_HEADER_BAND", c.Fingerprint.HeaderBand)
	c.Fingerprint.FooterBand = getEnvAsFloat64("FP_FOOTER_BAND", c.Fingerprint.FooterBand)
	c.Fingerprint.KeywordsFile = getEnv("FP_KEYWORDS_FILE", c.Fingerprint.KeywordsFile)

	c.Pipeline.ProfilesPath = getEnv("PROFILES_PATH", c.Pipeline.ProfilesPath)
	c.Pipeline.ExemplarRoot = getEnv("EXEMPLAR_ROOT", c.Pipeline.ExemplarRoot)
	c.Pipeline.Inbox = getEnv("INBOX_DIR", c.Pipeline.Inbox)
	c.Pipeline.Outbox = getEnv("OUTBOX_DIR", c.Pipeline.Outbox)
	c.Pipeline.XLSXPath = getEnv("XLSX_PATH", c.Pipeline.XLSXPath)
	c.Pipeline.Class = getEnv("DOC_CLASS", c.Pipeline.Class)
	c.Pipeline.Workers = getEnvAsInt("WORKERS", c.Pipeline.Workers)
	c.Pipeline.QueueSize = getEnvAsInt("QUEUE_SIZE", c.Pipeline.QueueSize)
	c.Pipeline.ProcessTimeout = getEnvAsDuration("PROCESS_TIMEOUT", c.Pipeline.ProcessTimeout)
	c.Pipeline.Debounce = getEnvAsDuration("WATCH_DEBOUNCE", c.Pipeline.Debounce)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.ListKey = getEnv("REDIS_LIST_KEY", c.Redis.ListKey)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// SlogLevel maps Log.Level onto a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver), ErrInvalidInput)
	}
	cl := c.Classifier
	if cl.Threshold < 0 || cl.Threshold > 1 {
		return NewAppError("CONFIG_ERROR", "CLASSIFIER_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	if cl.FontBonus < 0 || cl.FormBonus < 0 || cl.IdentityPenalty < 0 || cl.IdentityPenalty > 1 {
		return NewAppError("CONFIG_ERROR", "classifier bonuses must be >= 0 and the identity penalty within [0,1]", ErrInvalidInput)
	}
	fp := c.Fingerprint
	if fp.HeaderBand <= 0 || fp.FooterBand <= 0 || fp.HeaderBand+fp.FooterBand > 1 {
		return NewAppError("CONFIG_ERROR", "fingerprint bands must be positive and sum to at most 1", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be positive", ErrInvalidInput)
	}
	if c.Pipeline.QueueSize <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}

// ValidateDatabase checks the settings needed to open the configured database.
func (c *Config) ValidateDatabase() error {
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Database.Driver == "sqlite" && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "SQLITE_PATH is required", ErrInvalidInput)
	}
	return nil
}
