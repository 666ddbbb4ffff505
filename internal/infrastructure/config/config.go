package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Queue     QueueConfig
	NLP       NLPConfig
	Analyze   AnalyzeConfig
	Tracing   TracingConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
//
// Port has no envconfig default: the gateway and classifier run from the
// same Config type but listen on different ports, so each binary supplies
// its own fallback when neither PORT nor the -port flag is set.
type ServerConfig struct {
	Port string `envconfig:"PORT"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// QueueConfig holds message broker configuration.
type QueueConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"guest"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
	Name     string `envconfig:"RABBITMQ_QUEUE" default:"chat-jobs"`
	Prefetch int    `envconfig:"RABBITMQ_PREFETCH" default:"10"`
}

// URL builds the broker connection URL.
func (q QueueConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", q.User, q.Password, q.Host, q.Port)
}

// NLPConfig holds classification service configuration.
type NLPConfig struct {
	BaseURL string `envconfig:"NLP_SERVICE_URL" default:"http://localhost:8001"`
}

// AnalyzeConfig holds downstream analyze service configuration.
type AnalyzeConfig struct {
	BaseURL string `envconfig:"ANALYZE_SERVICE_URL" default:"http://localhost:8080"`
}

// TracingConfig holds trace exporter configuration.
type TracingConfig struct {
	Endpoint string `envconfig:"TRACE_EXPORTER_ENDPOINT" default:"http://apm-server:4318/v1/traces"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
		},
		Queue: QueueConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			Name:     "chat-jobs",
			Prefetch: 10,
		},
		NLP: NLPConfig{
			BaseURL: "http://localhost:8001",
		},
		Analyze: AnalyzeConfig{
			BaseURL: "http://localhost:8080",
		},
		Tracing: TracingConfig{
			Endpoint: "http://apm-server:4318/v1/traces",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
