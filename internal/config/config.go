package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lab-report-explainer/internal/domain"
)

// EnvPrefix is prepended to every environment override, e.g. LABEXPLAIN_SERVER_PORT
const EnvPrefix = "LABEXPLAIN"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager that searches the default
// config locations.
func NewManager() (*Manager, error) {
	return NewManagerFromFile("")
}

// NewManagerFromFile creates a configuration manager reading an explicit
// config file. An empty path falls back to the default search locations.
func NewManagerFromFile(path string) (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.loadConfig(path); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig(path string) error {
	// .env is optional; real environment variables take precedence over it
	_ = godotenv.Load()

	v := m.v
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/lab-report-explainer/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m.setDefaults()
	m.bindProviderKeys()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	v := m.v

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_upload_bytes", 10*1024*1024)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Analysis defaults
	v.SetDefault("analysis.borderline_margin", 0.1)
	v.SetDefault("analysis.min_text_length", 10)
	v.SetDefault("analysis.preview_length", 200)
	v.SetDefault("analysis.dictionary_path", "")

	// Extraction defaults
	v.SetDefault("extraction.provider", "http")
	v.SetDefault("extraction.base_url", "http://localhost:8000")
	v.SetDefault("extraction.timeout", "30s")
	v.SetDefault("extraction.rate_limit", 5)
	v.SetDefault("extraction.gemini.api_key", "")
	v.SetDefault("extraction.gemini.model", "gemini-1.5-flash")
	v.SetDefault("extraction.gemini.temperature", 0)
	setBreakerDefaults(v, "extraction.circuit_breaker")

	// Translation defaults
	v.SetDefault("translation.provider", "none")
	v.SetDefault("translation.source_language", domain.DefaultLanguage)
	v.SetDefault("translation.timeout", "15s")
	v.SetDefault("translation.max_concurrency", 8)
	v.SetDefault("translation.rate_limit", 10)
	v.SetDefault("translation.libretranslate.base_url", "http://localhost:5000")
	v.SetDefault("translation.libretranslate.api_key", "")
	v.SetDefault("translation.gemini.api_key", "")
	v.SetDefault("translation.gemini.model", "gemini-1.5-flash")
	v.SetDefault("translation.gemini.temperature", 0.2)
	setBreakerDefaults(v, "translation.circuit_breaker")
	v.SetDefault("translation.cache.enabled", true)
	v.SetDefault("translation.cache.memory_size", 2048)
	v.SetDefault("translation.cache.ttl", "24h")
	v.SetDefault("translation.cache.redis_url", "")
	v.SetDefault("translation.cache.pool_size", 10)
	v.SetDefault("translation.cache.pool_timeout", "4s")
	v.SetDefault("translation.cache.max_retries", 3)

	// Feedback defaults
	v.SetDefault("feedback.enabled", true)
	v.SetDefault("feedback.driver", "sqlite")
	v.SetDefault("feedback.sqlite_path", "data/feedback.db")
	v.SetDefault("feedback.database_url", "")
	v.SetDefault("feedback.migrate_on_start", true)
	v.SetDefault("feedback.max_open_conns", 10)
	v.SetDefault("feedback.max_idle_conns", 5)
	v.SetDefault("feedback.conn_max_lifetime", "5m")

	// MCP defaults
	v.SetDefault("mcp.server_name", "lab-report-explainer")
	v.SetDefault("mcp.server_version", "1.0.0")
}

func setBreakerDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+".max_requests", 3)
	v.SetDefault(prefix+".interval", "60s")
	v.SetDefault(prefix+".timeout", "30s")
	v.SetDefault(prefix+".max_failures", 5)
	v.SetDefault(prefix+".failure_rate_limit", 0.6)
	v.SetDefault(prefix+".min_requests_to_trip", 10)
}

// bindProviderKeys lets the conventional provider variables fill in API keys
func (m *Manager) bindProviderKeys() {
	_ = m.v.BindEnv("translation.gemini.api_key", EnvPrefix+"_TRANSLATION_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = m.v.BindEnv("extraction.gemini.api_key", EnvPrefix+"_EXTRACTION_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = m.v.BindEnv("translation.libretranslate.api_key", EnvPrefix+"_TRANSLATION_LIBRETRANSLATE_API_KEY", "LIBRETRANSLATE_API_KEY")
	_ = m.v.BindEnv("feedback.database_url", EnvPrefix+"_FEEDBACK_DATABASE_URL", "DATABASE_URL")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetAnalysisConfig returns pipeline configuration
func (m *Manager) GetAnalysisConfig() *domain.AnalysisConfig {
	return &m.config.Analysis
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if config.Analysis.BorderlineMargin < 0 || config.Analysis.BorderlineMargin >= 1 {
		return fmt.Errorf("borderline margin must be in [0, 1): %v", config.Analysis.BorderlineMargin)
	}
	if config.Analysis.MinTextLength < 1 {
		return fmt.Errorf("min text length must be at least 1")
	}

	switch config.Extraction.Provider {
	case "none":
	case "http":
		if config.Extraction.BaseURL == "" {
			return fmt.Errorf("extraction base URL is required for the http provider")
		}
	case "gemini":
		if config.Extraction.Gemini.APIKey == "" {
			return fmt.Errorf("Gemini API key is required for the gemini extraction provider")
		}
	default:
		return fmt.Errorf("unknown extraction provider: %s", config.Extraction.Provider)
	}

	switch config.Translation.Provider {
	case "none":
	case "libretranslate":
		if config.Translation.LibreTranslate.BaseURL == "" {
			return fmt.Errorf("LibreTranslate base URL is required")
		}
	case "gemini":
		if config.Translation.Gemini.APIKey == "" {
			return fmt.Errorf("Gemini API key is required for the gemini translation provider")
		}
	default:
		return fmt.Errorf("unknown translation provider: %s", config.Translation.Provider)
	}
	if config.Translation.MaxConcurrency < 1 {
		return fmt.Errorf("translation max concurrency must be at least 1")
	}

	if config.Feedback.Enabled {
		switch config.Feedback.Driver {
		case "sqlite":
			if config.Feedback.SQLitePath == "" {
				return fmt.Errorf("feedback sqlite path is required")
			}
		case "postgres":
			if config.Feedback.DatabaseURL == "" {
				return fmt.Errorf("feedback database URL is required for postgres")
			}
		default:
			return fmt.Errorf("unknown feedback driver: %s", config.Feedback.Driver)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.v.GetString("environment")) == "production"
}
