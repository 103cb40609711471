package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EngineMySQL     = "mysql"
	EngineSQLServer = "sqlserver"
)

type Config struct {
	Port           string
	DBPath         string
	SQLFilesDir    string
	ResultsDir     string
	TranscriptPath string // optional file the session transcript is mirrored to
	LogLevel       string
	MaxRows        int
	CacheTTL       time.Duration
	Warehouse      Warehouse
}

// Warehouse holds the connection settings for the data warehouse.
type Warehouse struct {
	Engine         string
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	ConnectTimeout time.Duration
}

// ConfigurationError is a fatal startup problem detected before any
// connection attempt.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Message)
}

// Load resolves the configuration from the environment and validates the
// warehouse settings.
func Load() (Config, error) {
	cfg, err := LoadLocal()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Warehouse.Validate()
}

// LoadLocal resolves the configuration without requiring warehouse
// settings. Commands that never connect use it.
func LoadLocal() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "9090"),
		DBPath:         getEnv("DB_PATH", "./data/badger"),
		SQLFilesDir:    getEnv("DW_QUERIES_DIR", "./sql_files"),
		ResultsDir:     getEnv("RESULTS_DIR", "./results"),
		TranscriptPath: getEnv("TRANSCRIPT_PATH", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Warehouse: Warehouse{
			Engine:   strings.ToLower(getEnv("DW_ENGINE", EngineMySQL)),
			Host:     getEnv("DW_HOST", "localhost"),
			User:     getEnv("DW_USER", "root"),
			Password: os.Getenv("DW_PASSWORD"),
			Database: os.Getenv("DW_DATABASE"),
		},
	}

	defaultPort := 3306
	if cfg.Warehouse.Engine == EngineSQLServer {
		defaultPort = 1433
	}

	var err error
	if cfg.Warehouse.Port, err = getEnvInt("DW_PORT", defaultPort); err != nil {
		return cfg, err
	}
	if cfg.MaxRows, err = getEnvInt("DW_MAX_ROWS", 10000); err != nil {
		return cfg, err
	}
	if cfg.Warehouse.ConnectTimeout, err = getEnvDuration("DW_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the settings that must be present before connecting.
func (w Warehouse) Validate() error {
	if w.Database == "" {
		return &ConfigurationError{Key: "DW_DATABASE", Message: "database name is required"}
	}
	switch w.Engine {
	case EngineMySQL, EngineSQLServer:
	default:
		return &ConfigurationError{Key: "DW_ENGINE", Message: fmt.Sprintf("unsupported engine %q", w.Engine)}
	}
	if w.Port <= 0 || w.Port > 65535 {
		return &ConfigurationError{Key: "DW_PORT", Message: fmt.Sprintf("port %d out of range", w.Port)}
	}
	return nil
}

// Addr returns host:port.
func (w Warehouse) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// SlogLevel maps LogLevel to an slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ConfigurationError{Key: key, Message: fmt.Sprintf("invalid integer %q", v)}
	}
	return n, nil
}

// getEnvDuration accepts a Go duration ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Message: fmt.Sprintf("invalid duration %q", v)}
	}
	return d, nil
}
