package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI          string
	DBName            string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	AdminPasswordHash string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIBase       string
	ProcessorTimeout    time.Duration

	Currency string

	RedisAddr       string
	ProductCacheTTL time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:          getEnvOrDefault("MONGO_URI", ""),
		DBName:            getEnvOrDefault("DB_NAME", "dentalebook"),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 24, time.Hour),
		AdminPasswordHash: getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),

		StripeSecretKey:     getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIBase:       getEnvOrDefault("STRIPE_API_BASE", "https://api.stripe.com"),
		ProcessorTimeout:    getDurationEnv("PROCESSOR_TIMEOUT", 10, time.Second),

		Currency: strings.ToLower(getEnvOrDefault("CURRENCY", "usd")),

		RedisAddr:       getEnvOrDefault("REDIS_ADDR", ""),
		ProductCacheTTL: getDurationEnv("PRODUCT_CACHE_TTL", 60, time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
