// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Store       StoreConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Search      SearchConfig
	Oracle      OracleConfig
	Classifier  ClassifierConfig
	Resolution  ResolutionConfig
	Analyze     AnalyzeConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	CorsOrigins     []string
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration. An empty URL disables events.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// SearchConfig holds search provider configuration
type SearchConfig struct {
	Provider     string
	RapidAPIKey  string
	RapidAPIHost string
	XBearerToken string
	XAPIHost     string
	XMaxResults  int
	Timeout      time.Duration
	MaxPages     int
}

// OracleConfig holds player identification oracle configuration
type OracleConfig struct {
	Provider        string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	Model           string
	MaxTokens       int
}

// ClassifierConfig holds sentiment model configuration
type ClassifierConfig struct {
	Model    string
	ModelDir string
	OnnxFile string
}

// ResolutionConfig holds knowledge base configuration
type ResolutionConfig struct {
	KnowledgeBaseFile string
}

// AnalyzeConfig holds analysis request defaults
type AnalyzeConfig struct {
	DefaultLimit      int
	MaxLimit          int
	DefaultSearchMode string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from a .env file, when present, and environment variables
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 5*time.Minute),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
			SQLitePath: getEnv("SQLITE_PATH", "tweets.db"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "playerpulse"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("ANALYSIS_EVENTS_TOPIC", "analysis"),
		},
		Search: SearchConfig{
			Provider:     strings.ToLower(getEnv("SEARCH_PROVIDER", "rapidapi")),
			RapidAPIKey:  getEnv("RAPIDAPI_KEY", ""),
			RapidAPIHost: getEnv("RAPIDAPI_HOST", "twitter-api45.p.rapidapi.com"),
			XBearerToken: getEnv("X_BEARER_TOKEN", ""),
			XAPIHost:     getEnv("X_API_HOST", ""),
			XMaxResults:  getEnvAsInt("X_MAX_RESULTS", 100),
			Timeout:      getEnvAsDuration("SEARCH_TIMEOUT", 30*time.Second),
			MaxPages:     getEnvAsInt("SEARCH_MAX_PAGES", 100),
		},
		Oracle: OracleConfig{
			Provider:        strings.ToLower(getEnv("ORACLE_PROVIDER", "anthropic")),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			Model:           getEnv("ORACLE_MODEL", ""),
			MaxTokens:       getEnvAsInt("ORACLE_MAX_TOKENS", 200),
		},
		Classifier: ClassifierConfig{
			Model:    getEnv("CLASSIFIER_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
			ModelDir: getEnv("CLASSIFIER_MODEL_DIR", "./models"),
			OnnxFile: getEnv("CLASSIFIER_ONNX_FILE", ""),
		},
		Resolution: ResolutionConfig{
			KnowledgeBaseFile: getEnv("KB_FILE", "nfl_players_kb.json"),
		},
		Analyze: AnalyzeConfig{
			DefaultLimit:      getEnvAsInt("ANALYZE_DEFAULT_LIMIT", 10),
			MaxLimit:          getEnvAsInt("ANALYZE_MAX_LIMIT", 1000),
			DefaultSearchMode: getEnv("ANALYZE_SEARCH_MODE", "Top"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "pretty"),
		},
	}

	if config.Oracle.Model == "" {
		config.Oracle.Model = defaultOracleModel(config.Oracle.Provider)
	}

	return config, validate(config)
}

// PostgresURL returns the connection string for the configured database
func (c DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func defaultOracleModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "claude-3-5-sonnet-20241022"
}

// validate checks if config is valid
func validate(config Config) error {
	switch config.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", config.Store.Driver)
	}

	switch config.Search.Provider {
	case "rapidapi", "xapi":
	default:
		return fmt.Errorf("unsupported SEARCH_PROVIDER %q", config.Search.Provider)
	}

	switch config.Oracle.Provider {
	case "anthropic", "openai", "none":
	default:
		return fmt.Errorf("unsupported ORACLE_PROVIDER %q", config.Oracle.Provider)
	}

	if config.Analyze.DefaultLimit <= 0 {
		return fmt.Errorf("ANALYZE_DEFAULT_LIMIT must be positive")
	}
	if config.Analyze.MaxLimit < config.Analyze.DefaultLimit {
		return fmt.Errorf("ANALYZE_MAX_LIMIT must not be below ANALYZE_DEFAULT_LIMIT")
	}

	if config.Environment != "development" {
		if config.Search.Provider == "rapidapi" && config.Search.RapidAPIKey == "" {
			return fmt.Errorf("RAPIDAPI_KEY must be set in non-development environments")
		}
		if config.Search.Provider == "xapi" && config.Search.XBearerToken == "" {
			return fmt.Errorf("X_BEARER_TOKEN must be set in non-development environments")
		}
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
