package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DispatchCron is the cron expression for the daily dunning batch.
	DispatchCron string
	// TrashRetentionDays bounds how long soft-deleted rows stay recoverable.
	TrashRetentionDays int
	// SubscriptionReminderDays is how many days before an organization's
	// subscription due date the payment reminder job fires.
	SubscriptionReminderDays int

	WhatsAppEndpoint string
	TelegramEndpoint string

	MercadoPagoEndpoint string
	AsaasEndpoint       string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "cobrato"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "cobrato"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		DispatchCron:             getenv("DISPATCH_CRON", "0 9 * * *"),
		TrashRetentionDays:       getenvInt("TRASH_RETENTION_DAYS", 30),
		SubscriptionReminderDays: getenvInt("SUBSCRIPTION_REMINDER_DAYS", 5),

		WhatsAppEndpoint: getenv("WHATSAPP_API_ENDPOINT", ""),
		TelegramEndpoint: getenv("TELEGRAM_API_ENDPOINT", "https://api.telegram.org"),

		MercadoPagoEndpoint: getenv("MERCADOPAGO_API_ENDPOINT", ""),
		AsaasEndpoint:       getenv("ASAAS_API_ENDPOINT", ""),
	}

	return cfg
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}
