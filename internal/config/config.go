package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	LogFile    string

	JWTSecret   string
	TokenTTL    time.Duration
	InternalKey string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	RedisAddr      string
	RedisPassword  string
	CommitLockTTL  time.Duration
	IdempotencyTTL time.Duration

	CORSOrigin string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:              os.Getenv("DB_HOST"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		DBPort:              os.Getenv("DB_PORT"),
		AppPort:             getEnv("APP_PORT", "8080"),
		AppEnv:              os.Getenv("APP_ENV"),
		LogFile:             os.Getenv("LOG_FILE"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            getDuration("TOKEN_TTL", 24*time.Hour),
		InternalKey:         os.Getenv("INTERNAL_SERVICE_KEY"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "php"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		CommitLockTTL:       getDuration("COMMIT_LOCK_TTL", 30*time.Second),
		IdempotencyTTL:      getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		CORSOrigin:          getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts either a Go duration ("90s") or a whole number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
