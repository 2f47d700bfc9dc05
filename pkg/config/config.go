package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Dataset
	Dataset DatasetConfig

	// ModelConfigPath points at the optional analytics YAML (internal/modelconfig)
	ModelConfigPath string

	// HTTP surface
	HTTP HTTPConfig

	// Redis (forecast cache, shared rate limit)
	Redis RedisConfig

	// Cache warm-up scheduler
	Warm WarmConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatasetConfig describes where the static case-count dataset comes from
type DatasetConfig struct {
	Source  string // local path or http(s) URL
	Country string // Country/Region filter, empty = no filter
	MinDate time.Time
	MaxDate time.Time
	Timeout time.Duration // remote fetch timeout
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// WarmConfig controls the scheduled forecast cache warm-up
type WarmConfig struct {
	Enabled     bool
	Schedule    string
	Concurrency int
}

// Overrides are CLI flag values applied on top of the environment (blank = keep)
type Overrides struct {
	Port            string
	DatasetSource   string
	ModelConfigPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadWith(Overrides{})
}

// LoadWith reads configuration from environment variables, then applies overrides
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func LoadWith(o Overrides) (*Config, error) {
	loadEnvFile()

	minDate, err := getEnvAsDate("DATASET_MIN_DATE", "2020-01-22")
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	maxDate, err := getEnvAsDate("DATASET_MAX_DATE", "2020-08-12")
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Dataset
		Dataset: DatasetConfig{
			Source:  getEnv("DATASET_SOURCE", ""),
			Country: getEnv("DATASET_COUNTRY", "India"),
			MinDate: minDate,
			MaxDate: maxDate,
			Timeout: getEnvAsDuration("DATASET_FETCH_TIMEOUT", "30s"),
		},

		ModelConfigPath: getEnv("MODEL_CONFIG", ""),

		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
			ReadTimeout:        getEnvAsDuration("HTTP_READ_TIMEOUT", "15s"),
			WriteTimeout:       getEnvAsDuration("HTTP_WRITE_TIMEOUT", "15s"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("CACHE_TTL", "1h"),
		},

		Warm: WarmConfig{
			Enabled:     getEnvAsBool("WARM_ENABLED", false),
			Schedule:    getEnv("WARM_SCHEDULE", "@hourly"),
			Concurrency: getEnvAsInt("WARM_CONCURRENCY", 4),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	cfg.applyOverrides(o)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyOverrides(o Overrides) {
	if o.Port != "" {
		c.Port = o.Port
	}
	if o.DatasetSource != "" {
		c.Dataset.Source = o.DatasetSource
	}
	if o.ModelConfigPath != "" {
		c.ModelConfigPath = o.ModelConfigPath
	}
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Dataset.Source == "" {
		return fmt.Errorf("DATASET_SOURCE is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if !c.Dataset.MinDate.IsZero() && !c.Dataset.MaxDate.IsZero() && c.Dataset.MinDate.After(c.Dataset.MaxDate) {
		return fmt.Errorf("DATASET_MIN_DATE must not be after DATASET_MAX_DATE")
	}

	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}

	if c.Warm.Concurrency < 1 {
		return fmt.Errorf("WARM_CONCURRENCY must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvAsDate parses YYYY-MM-DD; "none" disables the bound
func getEnvAsDate(key string, defaultValue string) (time.Time, error) {
	raw := getEnv(key, defaultValue)
	if strings.EqualFold(raw, "none") {
		return time.Time{}, nil
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD or none: %w", key, err)
	}
	return date, nil
}
