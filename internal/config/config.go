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

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds the application configuration with validation
type Config struct {
	// Application settings
	Port        int    `validate:"required,min=1,max=65535"`
	LogLevel    string `validate:"required,oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=json console"`
	StoreDriver string `validate:"oneof=postgres memory"`

	// Bootstrap admin for the in-memory store
	MemoryAdminUsername string
	MemoryAdminPassword string

	Database    DatabaseConfig
	Session     SessionConfig
	Security    SecurityConfig
	Server      ServerConfig
	Notifier    NotifierConfig
	MQTT        MQTTConfig
	Maintenance MaintenanceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            int    `validate:"required,min=1,max=65535"`
	User            string `validate:"required"`
	Password        string `validate:"required"`
	Name            string `validate:"required"`
	SSLMode         string `validate:"required,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `validate:"min=1"`
	MaxIdleConns    int    `validate:"min=1"`
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	Migrate         bool
}

// SessionConfig holds admin session configuration
type SessionConfig struct {
	Backend       string `validate:"oneof=memory redis"`
	TTL           time.Duration
	CookieName    string
	SecureCookie  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimitRPS    int           `validate:"min=1"`
	RateLimitBurst  int           `validate:"min=1"`
	RequestTimeout  time.Duration `validate:"required"`
	ShutdownTimeout time.Duration `validate:"required"`
	EnableCORS      bool
	AllowedOrigins  []string
	TrustedProxies  []string
}

// ServerConfig holds server performance configuration
type ServerConfig struct {
	ReadTimeout    time.Duration `validate:"required"`
	WriteTimeout   time.Duration `validate:"required"`
	IdleTimeout    time.Duration `validate:"required"`
	MaxHeaderBytes int           `validate:"min=1024"`
}

// NotifierConfig holds alert webhook configuration. An empty URL disables alerts.
type NotifierConfig struct {
	URL             string
	Timeout         time.Duration
	RetryAttempts   int `validate:"min=0,max=10"`
	RetryDelay      time.Duration
	HealthThreshold int
}

// MQTTConfig holds the broker used to forward remote commands. An empty
// broker disables dispatch.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MaintenanceConfig controls the nightly maintenance scheduler
type MaintenanceConfig struct {
	Enabled bool
	Hour    int `validate:"min=0,max=23"`
}

// LoadConfig loads and validates the configuration from environment variables.
// Values from a .env file in the working directory are applied first without
// overriding variables already set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		Port:        getEnvAsInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),

		MemoryAdminUsername: getEnv("MEMORY_ADMIN_USERNAME", "admin"),
		MemoryAdminPassword: getEnv("MEMORY_ADMIN_PASSWORD", ""),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "netclass_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			QueryTimeout:    getEnvAsDuration("DB_QUERY_TIMEOUT", 10*time.Second),
			Migrate:         getEnvAsBool("DB_MIGRATE", true),
		},

		Session: SessionConfig{
			Backend:       getEnv("SESSION_BACKEND", SessionBackendMemory),
			TTL:           getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			CookieName:    getEnv("SESSION_COOKIE", "netclass_session"),
			SecureCookie:  getEnvAsBool("SESSION_SECURE", false),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},

		Security: SecurityConfig{
			RateLimitRPS:    getEnvAsInt("RATE_LIMIT_RPS", 50),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 100),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:      getEnvAsBool("ENABLE_CORS", false),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{}),
			TrustedProxies:  getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 35*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1MB
		},

		Notifier: NotifierConfig{
			URL:             getEnv("NOTIFIER_URL", ""),
			Timeout:         getEnvAsDuration("NOTIFIER_TIMEOUT", 10*time.Second),
			RetryAttempts:   getEnvAsInt("NOTIFIER_RETRY_ATTEMPTS", 3),
			RetryDelay:      getEnvAsDuration("NOTIFIER_RETRY_DELAY", time.Second),
			HealthThreshold: getEnvAsInt("HEALTH_ALERT_THRESHOLD", 50),
		},

		MQTT: MQTTConfig{
			Broker:      getEnv("MQTT_BROKER", ""),
			ClientID:    getEnv("MQTT_CLIENT_ID", "netclass-console"),
			Username:    getEnv("MQTT_USERNAME", ""),
			Password:    getEnv("MQTT_PASSWORD", ""),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "netclass"),
		},

		Maintenance: MaintenanceConfig{
			Enabled: getEnvAsBool("MAINTENANCE_ENABLED", false),
			Hour:    getEnvAsInt("MAINTENANCE_HOUR", 3),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// validateConfig performs basic validation on the configuration
func validateConfig(config *Config) error {
	var errors []string

	switch config.StoreDriver {
	case StoreDriverPostgres:
		if config.Database.User == "" {
			errors = append(errors, "database user is required")
		}
		if config.Database.Password == "" {
			errors = append(errors, "database password is required")
		}
		if config.Database.Name == "" {
			errors = append(errors, "database name is required")
		}
		if config.Database.Port < 1 || config.Database.Port > 65535 {
			errors = append(errors, "database port must be between 1 and 65535")
		}
	case StoreDriverMemory:
		if config.MemoryAdminPassword == "" {
			errors = append(errors, "memory admin password is required for the memory store")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown store driver %q", config.StoreDriver))
	}

	switch config.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if config.Session.RedisAddr == "" {
			errors = append(errors, "redis address is required for the redis session backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown session backend %q", config.Session.Backend))
	}
	if config.Session.TTL <= 0 {
		errors = append(errors, "session TTL must be positive")
	}

	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("unknown log level %q", config.LogLevel))
	}

	if config.Port < 1 || config.Port > 65535 {
		errors = append(errors, "port must be between 1 and 65535")
	}
	if config.Maintenance.Hour < 0 || config.Maintenance.Hour > 23 {
		errors = append(errors, "maintenance hour must be between 0 and 23")
	}
	if config.Notifier.RetryAttempts < 0 || config.Notifier.RetryAttempts > 10 {
		errors = append(errors, "notifier retry attempts must be between 0 and 10")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
