package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External collaborators
	Predictor PredictorConfig
	PriceFeed PriceFeedConfig

	// Challenge policy
	Challenge ChallengeConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PredictorConfig holds the LLM predictor API configuration
type PredictorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// PriceFeedConfig holds the market quote API configuration
type PriceFeedConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RequestsPerSec int
	CacheTTL       time.Duration

	// Fallback HTML quote page (used when the JSON API has no data)
	ScrapeBaseURL string
}

// ChallengeConfig holds challenge lifecycle and verification policy
type ChallengeConfig struct {
	// CountDegraded controls whether outcomes scored against a synthetic
	// substitute price contribute to correctCount. 원본 동작은 포함(true).
	CountDegraded bool

	// HistoryDays is the default report window in challenges
	HistoryDays int
}

// SchedulerConfig holds the cron schedules of the daily jobs
type SchedulerConfig struct {
	CreateSpec string // daily challenge creation
	VerifySpec string // next-day verification
	ReportSpec string // post-verification report snapshot
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8086"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External collaborators
		Predictor: PredictorConfig{
			APIKey:  getEnv("PREDICTOR_API_KEY", ""),
			BaseURL: getEnv("PREDICTOR_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("PREDICTOR_MODEL", "gpt-4o-mini"),
			Timeout: getEnvAsDuration("PREDICTOR_TIMEOUT", "45s"),
		},

		PriceFeed: PriceFeedConfig{
			BaseURL:        getEnv("PRICEFEED_BASE_URL", "https://api.twelvedata.com"),
			APIKey:         getEnv("PRICEFEED_API_KEY", ""),
			Timeout:        getEnvAsDuration("PRICEFEED_TIMEOUT", "10s"),
			RequestsPerSec: getEnvAsInt("PRICEFEED_REQUESTS_PER_SEC", 5),
			CacheTTL:       getEnvAsDuration("PRICEFEED_CACHE_TTL", "1m"),
			ScrapeBaseURL:  getEnv("PRICEFEED_SCRAPE_BASE_URL", "https://finance.yahoo.com/quote"),
		},

		// Challenge policy
		Challenge: ChallengeConfig{
			CountDegraded: getEnvAsBool("CHALLENGE_COUNT_DEGRADED", true),
			HistoryDays:   getEnvAsInt("CHALLENGE_HISTORY_DAYS", 30),
		},

		// Scheduler (cron specs with seconds field)
		Scheduler: SchedulerConfig{
			CreateSpec: getEnv("SCHEDULER_CREATE_SPEC", "0 30 8 * * *"),
			VerifySpec: getEnv("SCHEDULER_VERIFY_SPEC", "0 0 9 * * *"),
			ReportSpec: getEnv("SCHEDULER_REPORT_SPEC", "0 10 9 * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.PriceFeed.RequestsPerSec <= 0 {
		return fmt.Errorf("PRICEFEED_REQUESTS_PER_SEC must be positive")
	}

	if c.Challenge.HistoryDays <= 0 {
		return fmt.Errorf("CHALLENGE_HISTORY_DAYS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
