package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Extraction  ExtractionConfig  `mapstructure:"extraction"`
	Translation TranslationConfig `mapstructure:"translation"`
	Feedback    FeedbackConfig    `mapstructure:"feedback"`
	MCP         MCPConfig         `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalysisConfig tunes the report pipeline
type AnalysisConfig struct {
	BorderlineMargin float64 `mapstructure:"borderline_margin"`
	MinTextLength    int     `mapstructure:"min_text_length"`
	PreviewLength    int     `mapstructure:"preview_length"`
	DictionaryPath   string  `mapstructure:"dictionary_path"`
}

// ExtractionConfig selects and configures the document text extractor
type ExtractionConfig struct {
	Provider  string               `mapstructure:"provider"` // "none", "http", "gemini"
	BaseURL   string               `mapstructure:"base_url"`
	Timeout   time.Duration        `mapstructure:"timeout"`
	RateLimit int                  `mapstructure:"rate_limit"`
	Gemini    GeminiConfig         `mapstructure:"gemini"`
	Breaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// TranslationConfig selects and configures the translation provider
type TranslationConfig struct {
	Provider       string               `mapstructure:"provider"` // "none", "libretranslate", "gemini"
	SourceLanguage string               `mapstructure:"source_language"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxConcurrency int                  `mapstructure:"max_concurrency"`
	RateLimit      int                  `mapstructure:"rate_limit"`
	LibreTranslate LibreTranslateConfig `mapstructure:"libretranslate"`
	Gemini         GeminiConfig         `mapstructure:"gemini"`
	Breaker        CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Cache          CacheConfig          `mapstructure:"cache"`
}

// LibreTranslateConfig represents a LibreTranslate compatible endpoint
type LibreTranslateConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// GeminiConfig represents Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// CircuitBreakerConfig mirrors gobreaker settings
type CircuitBreakerConfig struct {
	MaxRequests       uint32        `mapstructure:"max_requests"`
	Interval          time.Duration `mapstructure:"interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxFailures       uint32        `mapstructure:"max_failures"`
	FailureRateLimit  float64       `mapstructure:"failure_rate_limit"`
	MinRequestsToTrip uint32        `mapstructure:"min_requests_to_trip"`
}

// CacheConfig represents translation cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MemorySize  int           `mapstructure:"memory_size"`
	TTL         time.Duration `mapstructure:"ttl"`
	RedisURL    string        `mapstructure:"redis_url"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// FeedbackConfig represents parse-accuracy feedback storage
type FeedbackConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // "sqlite", "postgres"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	DatabaseURL     string        `mapstructure:"database_url"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}
