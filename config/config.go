package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the CRM bot
type Config struct {
	Telegram   TelegramConfig
	Database   DatabaseConfig
	HTTP       HTTPConfig
	Lead       LeadConfig
	Admin      AdminConfig
	Pagination PaginationConfig
	Broadcast  BroadcastConfig
	Kafka      KafkaConfig
	Logging    LoggingConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken  string
	QueueSize int
}

// DatabaseConfig holds storage configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	LogLevel string
}

// HTTPConfig holds lead ingress server configuration
type HTTPConfig struct {
	Port string
}

// LeadConfig holds lead ingress configuration
type LeadConfig struct {
	APIKey string
}

// AdminConfig holds the raw admin allow-list
type AdminConfig struct {
	IDs string
}

// PaginationConfig holds page defaults for listings
type PaginationConfig struct {
	DefaultPage int
	DefaultSize int
	MaxSize     int
}

// BroadcastConfig holds lead notification fan-out settings
type BroadcastConfig struct {
	Workers     int
	SendTimeout time.Duration
	RatePerSec  float64
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled             bool
	Brokers             []string
	GroupID             string
	LeadsSubmittedTopic string
	LeadsCreatedTopic   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config     *Config
	Telegram   *TelegramConfig
	Database   *DatabaseConfig
	HTTP       *HTTPConfig
	Lead       *LeadConfig
	Admin      *AdminConfig
	Pagination *PaginationConfig
	Broadcast  *BroadcastConfig
	Kafka      *KafkaConfig
	Logging    *LoggingConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:     cfg,
		Telegram:   &cfg.Telegram,
		Database:   &cfg.Database,
		HTTP:       &cfg.HTTP,
		Lead:       &cfg.Lead,
		Admin:      &cfg.Admin,
		Pagination: &cfg.Pagination,
		Broadcast:  &cfg.Broadcast,
		Kafka:      &cfg.Kafka,
		Logging:    &cfg.Logging,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			QueueSize: getEnvInt("TELEGRAM_QUEUE_SIZE", 256),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "postgres"),
			Password: getEnv("DATABASE_PASSWORD", "postgres"),
			Name:     getEnv("DATABASE_NAME", "minicrm"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
			LogLevel: getEnv("DATABASE_LOG_LEVEL", "warn"),
		},
		HTTP: HTTPConfig{
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Lead: LeadConfig{
			APIKey: getEnv("LEAD_API_KEY", "changeme"),
		},
		Admin: AdminConfig{
			IDs: getEnv("ADMIN_IDS", ""),
		},
		Pagination: PaginationConfig{
			DefaultPage: getEnvInt("PAGINATION_DEFAULT_PAGE", 0),
			DefaultSize: getEnvInt("PAGINATION_DEFAULT_SIZE", 20),
			MaxSize:     getEnvInt("PAGINATION_MAX_SIZE", 100),
		},
		Broadcast: BroadcastConfig{
			Workers:     getEnvInt("BROADCAST_WORKERS", 8),
			SendTimeout: getEnvDuration("BROADCAST_SEND_TIMEOUT", 10*time.Second),
			RatePerSec:  getEnvFloat("BROADCAST_RATE_PER_SEC", 25),
		},
		Kafka: KafkaConfig{
			Enabled:             getEnvBool("KAFKA_ENABLED", false),
			Brokers:             strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			GroupID:             getEnv("KAFKA_GROUP_ID", "crm-bot-group"),
			LeadsSubmittedTopic: getEnv("KAFKA_TOPIC_LEADS_SUBMITTED", "leads.submitted"),
			LeadsCreatedTopic:   getEnv("KAFKA_TOPIC_LEADS_CREATED", "leads.created"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}

	if c.Lead.APIKey == "" {
		return fmt.Errorf("LEAD_API_KEY must not be empty")
	}

	if c.Broadcast.Workers <= 0 {
		return fmt.Errorf("BROADCAST_WORKERS must be positive")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
