package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Redis struct {
		Addr     string
		Password string
		GeoKey   string
	}
	Kafka struct {
		Brokers []string // YAML key: "brokers", comma-separated
		Topic   string
	}
	Backend struct {
		BaseURL        string
		TimeoutSeconds int
	}
	Controller struct {
		OfferTTLSeconds         int
		LocationIntervalSeconds int
	}
	Services struct {
		GatewayPort int
		RelayPort   int
	}
	JWT struct {
		SecretKey string
	}
	Stripe struct {
		APIKey string
	}
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// OfferTTL returns the configured offer lifetime as a duration.
func (c *Config) OfferTTL() time.Duration {
	return time.Duration(c.Controller.OfferTTLSeconds) * time.Second
}

// LocationInterval returns the configured live-location push interval.
func (c *Config) LocationInterval() time.Duration {
	return time.Duration(c.Controller.LocationIntervalSeconds) * time.Second
}

// BackendTimeout returns the per-call REST client timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.GeoKey == "" {
		cfg.Redis.GeoKey = "drivers_geo"
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "driver-locations"
	}

	// Backend
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 5
	}

	// Controller
	if cfg.Controller.OfferTTLSeconds == 0 {
		cfg.Controller.OfferTTLSeconds = 30
	}
	if cfg.Controller.LocationIntervalSeconds == 0 {
		cfg.Controller.LocationIntervalSeconds = 3
	}

	// Services
	if cfg.Services.GatewayPort == 0 {
		cfg.Services.GatewayPort = 3002
	}
	if cfg.Services.RelayPort == 0 {
		cfg.Services.RelayPort = 3003
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// DB
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.name is required")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	// Backend
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		problems = append(problems, "backend.base_url must be an http(s) URL")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		problems = append(problems, "backend.timeout_seconds must be > 0")
	}

	// Controller
	if c.Controller.OfferTTLSeconds <= 0 {
		problems = append(problems, "controller.offer_ttl_seconds must be > 0")
	}
	if c.Controller.LocationIntervalSeconds <= 0 {
		problems = append(problems, "controller.location_interval_seconds must be > 0")
	}

	// Services
	if c.Services.GatewayPort <= 0 || c.Services.GatewayPort > 65535 {
		problems = append(problems, "services.driver_gateway must be in 1..65535")
	}
	if c.Services.RelayPort <= 0 || c.Services.RelayPort > 65535 {
		problems = append(problems, "services.location_relay must be in 1..65535")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
