package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ServiceName    = "retail-backoffice"
	ServiceVersion = "0.1.0"
)

const (
	DefaultHTTPAddr         = ":8080"
	DefaultDataDir          = "data"
	DefaultKafkaTopic       = "backoffice-events"
	DefaultKafkaGroupID     = "stock-alerter"
	DefaultOperationTimeout = 5 * time.Second
	DefaultAdminUsername    = "admin"

	AccessTokenExpiry  = 15 * time.Minute
	RefreshTokenExpiry = 7 * 24 * time.Hour

	minJWTSecretLength = 32
)

// Config is read from the environment once at startup
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	DataDir     string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string

	OperationTimeout       time.Duration
	StrictOrderTransitions bool

	LogLevel     string
	OtelEndpoint string

	MailFrom    string
	AlertMailTo string
}

// Load reads the configuration. Only JWT_SECRET and ADMIN_PASSWORD_HASH are required
// by the API; the alerter calls LoadAlerter which skips them.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	}
	if cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD_HASH environment variable is required")
	}
	return cfg, nil
}

// LoadAlerter reads the configuration of the stock alerter, which needs a broker
func LoadAlerter() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS environment variable is required")
	}
	return cfg, nil
}

func load() (*Config, error) {
	timeout, err := getDuration("OPERATION_TIMEOUT", DefaultOperationTimeout)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("OPERATION_TIMEOUT must be positive, got %s", timeout)
	}
	strict, err := getBool("STRICT_ORDER_TRANSITIONS", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPAddr:               getEnv("HTTP_ADDR", DefaultHTTPAddr),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DataDir:                getEnv("DATA_DIR", DefaultDataDir),
		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:             getEnv("KAFKA_TOPIC", DefaultKafkaTopic),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", DefaultKafkaGroupID),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		AdminUsername:          getEnv("ADMIN_USERNAME", DefaultAdminUsername),
		AdminPasswordHash:      os.Getenv("ADMIN_PASSWORD_HASH"),
		OperationTimeout:       timeout,
		StrictOrderTransitions: strict,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		OtelEndpoint:           os.Getenv("OTEL_ENDPOINT"),
		MailFrom:               getEnv("MAIL_FROM", "noreply@example.com"),
		AlertMailTo:            getEnv("ALERT_MAIL_TO", "inventory@example.com"),
	}, nil
}

// DataFile returns the path of a collection's local JSON copy
func (c *Config) DataFile(collection string) string {
	return filepath.Join(c.DataDir, collection+".json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
