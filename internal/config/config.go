package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	LockBackendRedis  = "redis"
	LockBackendCookie = "cookie"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	// Medusa backend
	BackendURL     string
	PublishableKey string
	BackendTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cart creation
	LockBackend        string
	CartLockTTL        time.Duration
	CartContentionWait time.Duration
	CartRetryAttempts  int

	KafkaBrokers   []string
	AnalyticsTopic string

	CORSAllowOrigins   []string
	DefaultCountryCode string
}

func Load() *Config {
	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8000"),

		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		BackendURL:     getEnv("MEDUSA_BACKEND_URL", "http://localhost:9000"),
		PublishableKey: getEnv("MEDUSA_PUBLISHABLE_KEY", ""),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LockBackend:        strings.ToLower(getEnv("LOCK_BACKEND", LockBackendRedis)),
		CartLockTTL:        getEnvDuration("CART_LOCK_TTL", 30*time.Second),
		CartContentionWait: getEnvDuration("CART_CONTENTION_WAIT", 2*time.Second),
		CartRetryAttempts:  getEnvInt("CART_RETRY_ATTEMPTS", 3),

		KafkaBrokers:   splitCSV(getEnv("KAFKA_BROKERS", "")),
		AnalyticsTopic: getEnv("ANALYTICS_TOPIC", "storefront-analytics"),

		CORSAllowOrigins:   splitCSV(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:8000")),
		DefaultCountryCode: strings.ToLower(getEnv("DEFAULT_COUNTRY_CODE", "us")),
	}
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
