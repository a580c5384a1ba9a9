package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jameslaisianto/Back-end-web-dev/pkg/utils"
)

// Default listen addresses of the four services.
const (
	BasicServerAddress = ":34568"
	AuthServerAddress  = ":34570"
	UserServerAddress  = ":34572"
	PushServerAddress  = ":34574"
)

// Table names shared by every service.
const (
	AuthTableName     = "AuthTable"
	DataTableName     = "DataTable"
	AuthUserPartition = "Userid"
)

const developmentTokenSecret = "development-only-token-secret"

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string        `yaml:"server_address" validate:"required"`
	Environment    string        `yaml:"environment" validate:"oneof=development test staging production"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Backing store
	StoreBackend     string        `yaml:"store_backend" validate:"oneof=dynamodb memory"`
	AWSRegion        string        `yaml:"aws_region" validate:"required_if=StoreBackend dynamodb"`
	DynamoDBEndpoint string        `yaml:"dynamodb_endpoint" validate:"omitempty,url"`
	TableCreateWait  time.Duration `yaml:"table_create_wait"`
	EventBusName     string        `yaml:"event_bus_name"`

	// Capability tokens
	TokenSecret string        `yaml:"token_secret" validate:"required"`
	TokenIssuer string        `yaml:"token_issuer" validate:"required"`
	TokenTTL    time.Duration `yaml:"token_ttl" validate:"gt=0"`

	// Peer services
	AuthServiceURL string `yaml:"auth_service_url" validate:"required,url"`
	DataServiceURL string `yaml:"data_service_url" validate:"required,url"`
	PushServiceURL string `yaml:"push_service_url" validate:"required,url"`

	// Fan-out
	PushConcurrency int `yaml:"push_concurrency" validate:"min=1,max=64"`

	// Password attempts per client IP per minute; zero disables the limit
	AuthRateLimit int `yaml:"auth_rate_limit" validate:"min=0"`

	// Feature flags
	EnableCORS bool `yaml:"enable_cors"`
}

// Default returns the configuration used when nothing overrides it
func Default(serverAddress string) *Config {
	return &Config{
		ServerAddress:   serverAddress,
		Environment:     "development",
		RequestTimeout:  10 * time.Second,
		LogLevel:        "info",
		StoreBackend:    "dynamodb",
		AWSRegion:       "us-west-2",
		TableCreateWait: 2 * time.Minute,
		TokenSecret:     developmentTokenSecret,
		TokenIssuer:     "scoped-store-auth",
		TokenTTL:        24 * time.Hour,
		AuthServiceURL:  "http://localhost" + AuthServerAddress,
		DataServiceURL:  "http://localhost" + BasicServerAddress,
		PushServiceURL:  "http://localhost" + PushServerAddress,
		PushConcurrency: 8,
		AuthRateLimit:   60,
		EnableCORS:      true,
	}
}

// LoadConfig loads configuration for a service listening on serverAddress
// by default. Sources, lowest priority first: defaults, the YAML file named
// by CONFIG_FILE, a .env file, then environment variables.
func LoadConfig(serverAddress string) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := Default(serverAddress)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.TableCreateWait = getEnvDuration("TABLE_CREATE_WAIT", c.TableCreateWait)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.TokenSecret = getEnv("TOKEN_SECRET", c.TokenSecret)
	c.TokenIssuer = getEnv("TOKEN_ISSUER", c.TokenIssuer)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)

	c.AuthServiceURL = getEnv("AUTH_SERVICE_URL", c.AuthServiceURL)
	c.DataServiceURL = getEnv("DATA_SERVICE_URL", c.DataServiceURL)
	c.PushServiceURL = getEnv("PUSH_SERVICE_URL", c.PushServiceURL)

	c.PushConcurrency = getEnvInt("PUSH_CONCURRENCY", c.PushConcurrency)
	c.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", c.AuthRateLimit)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.IsProduction() {
		if c.TokenSecret == developmentTokenSecret {
			return fmt.Errorf("invalid configuration: TOKEN_SECRET must be set in production")
		}
		if c.StoreBackend == "memory" {
			return fmt.Errorf("invalid configuration: memory store is not allowed in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
