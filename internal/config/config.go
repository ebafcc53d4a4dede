package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Store     StoreConfig
	Cache     CacheConfig
	Session   SessionConfig
	Predictor PredictorConfig
	Assistant AssistantConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"automind-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LoginKey    string `envconfig:"LOGIN_KEY" default:""` // Admin stats login key
}

// StoreConfig holds persistent store settings.
type StoreConfig struct {
	Type     string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres, or mysql
	Path     string `envconfig:"STORE_PATH" default:"./data/automind.db"`
	Host     string `envconfig:"STORE_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_PORT" default:"0"`
	Name     string `envconfig:"STORE_NAME" default:"automind"`
	User     string `envconfig:"STORE_USER" default:""`
	Password string `envconfig:"STORE_PASS" default:""`
	SSLMode  string `envconfig:"STORE_SSLMODE" default:"disable"`
}

// CacheConfig holds session cache settings.
type CacheConfig struct {
	Type            string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	CleanupInterval time.Duration `envconfig:"CACHE_CLEANUP_INTERVAL" default:"1m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"automind:"`
}

// SessionConfig holds session token and credential settings.
type SessionConfig struct {
	TTL              time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CredentialScheme string        `envconfig:"CREDENTIAL_SCHEME" default:"plaintext"` // plaintext or bcrypt
}

// PredictorConfig holds price predictor settings.
type PredictorConfig struct {
	DatasetPath string        `envconfig:"PREDICTOR_DATASET" default:"./data/Cleaned_Car.csv"`
	URL         string        `envconfig:"PREDICTOR_URL" default:""`
	Timeout     time.Duration `envconfig:"PREDICTOR_TIMEOUT" default:"10s"`
}

// AssistantConfig holds conversational assistant settings.
type AssistantConfig struct {
	APIKey  string        `envconfig:"AK" default:""`
	Model   string        `envconfig:"ASSISTANT_MODEL" default:"gemini-pro-latest"`
	Timeout time.Duration `envconfig:"ASSISTANT_TIMEOUT" default:"30s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// UsesRedis reports whether sessions are kept in Redis.
func (c *CacheConfig) UsesRedis() bool {
	return strings.EqualFold(c.Type, "redis")
}

// DSN returns the data source name for the configured store type.
func (s *StoreConfig) DSN() (string, error) {
	switch strings.ToLower(s.Type) {
	case "", "sqlite":
		return s.Path, nil
	case "postgres", "postgresql":
		port := s.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			s.User, s.Password, s.Host, port, s.Name, s.SSLMode), nil
	case "mysql":
		port := s.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
			s.User, s.Password, s.Host, port, s.Name), nil
	}
	return "", fmt.Errorf("unknown store type %q", s.Type)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
