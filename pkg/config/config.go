package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Source names for the instrument table and price history collaborators
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceYahoo    = "yahoo"
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

	// Data sources
	Sources SourceConfig

	// External APIs
	Yahoo YahooConfig

	// Report generation
	Report ReportConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// SourceConfig selects where instruments and prices come from
type SourceConfig struct {
	StrategyFile    string // YAML 가중치 모델 (비어 있으면 기본값)
	Instruments     string // csv | postgres
	InstrumentsFile string // csv 경로
	Prices          string // yahoo | postgres

	// Yahoo → PostgreSQL 가격 적재 (PRICE_SOURCE=postgres 일 때만 스케줄)
	PriceSyncSchedule string
	PriceSyncWorkers  int
}

// YahooConfig holds the price history API configuration
type YahooConfig struct {
	BaseURL   string
	RateLimit int // requests per second
	Timeout   time.Duration
}

// ReportConfig holds defaults for scheduled and CLI report generation
type ReportConfig struct {
	Format        string // pdf | text | json
	Output        string
	Schedule      string // cron (with seconds)
	MainTopic     string
	IndustryTopic string
	MaxRetries    int // 스케줄러 전체 요청 재시도 횟수
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Sources: SourceConfig{
			StrategyFile:    getEnv("STRATEGY_FILE", ""),
			Instruments:     getEnv("INSTRUMENT_SOURCE", SourceCSV),
			InstrumentsFile: getEnv("INSTRUMENTS_FILE", "all_stock_parameters.csv"),
			Prices:          getEnv("PRICE_SOURCE", SourceYahoo),

			PriceSyncSchedule: getEnv("PRICE_SYNC_SCHEDULE", "0 30 17 * * 1-5"),
			PriceSyncWorkers:  getEnvAsInt("PRICE_SYNC_WORKERS", 4),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RateLimit: getEnvAsInt("YAHOO_RATE_LIMIT", 5),
			Timeout:   getEnvAsDuration("YAHOO_TIMEOUT", "30s"),
		},

		Report: ReportConfig{
			Format:        getEnv("REPORT_FORMAT", "pdf"),
			Output:        getEnv("REPORT_OUTPUT", "report.pdf"),
			Schedule:      getEnv("REPORT_SCHEDULE", "0 0 18 * * 1-5"),
			MainTopic:     getEnv("REPORT_MAIN_TOPIC", ""),
			IndustryTopic: getEnv("REPORT_INDUSTRY_TOPIC", ""),
			MaxRetries:    getEnvAsInt("SCHEDULER_MAX_RETRIES", 0),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
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
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Sources.Instruments != SourceCSV && c.Sources.Instruments != SourcePostgres {
		return fmt.Errorf("INSTRUMENT_SOURCE must be one of: csv, postgres")
	}
	if c.Sources.Prices != SourceYahoo && c.Sources.Prices != SourcePostgres {
		return fmt.Errorf("PRICE_SOURCE must be one of: yahoo, postgres")
	}

	// Postgres 소스를 쓰는 경우에만 DATABASE_URL 필수
	if c.NeedsDatabase() && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when a postgres source is selected")
	}

	if c.Sources.Instruments == SourceCSV && c.Sources.InstrumentsFile == "" {
		return fmt.Errorf("INSTRUMENTS_FILE is required for the csv instrument source")
	}

	switch c.Report.Format {
	case "pdf", "text", "json":
	default:
		return fmt.Errorf("REPORT_FORMAT must be one of: pdf, text, json")
	}

	if c.Yahoo.RateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be > 0")
	}

	if c.Sources.PriceSyncWorkers <= 0 {
		return fmt.Errorf("PRICE_SYNC_WORKERS must be > 0")
	}

	if c.Report.MaxRetries < 0 {
		return fmt.Errorf("SCHEDULER_MAX_RETRIES must be >= 0")
	}

	return nil
}

// NeedsDatabase reports whether any configured source reads from PostgreSQL
func (c *Config) NeedsDatabase() bool {
	return c.Sources.Instruments == SourcePostgres || c.Sources.Prices == SourcePostgres
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
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
