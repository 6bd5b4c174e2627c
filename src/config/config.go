package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DatabasePath string
	LogLevel     string

	// ReviewConfidenceThreshold is the minimum extraction confidence a field
	// needs before a batch counts as review-ready.
	ReviewConfidenceThreshold float64

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	// ValidationNotifyEmail receives a summary when a validation run finds
	// errors. Empty disables notifications.
	ValidationNotifyEmail string
	// NotifyMinInterval throttles notification emails per process.
	NotifyMinInterval time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	confidenceThresholdStr := getEnv("REVIEW_CONFIDENCE_THRESHOLD", "0.75")
	confidenceThreshold, err := strconv.ParseFloat(confidenceThresholdStr, 64)
	if err != nil || confidenceThreshold < 0 || confidenceThreshold > 1 {
		log.Printf("WARNING: Invalid REVIEW_CONFIDENCE_THRESHOLD '%s'. Using default 0.75. Error: %v", confidenceThresholdStr, err)
		confidenceThreshold = 0.75
	}

	notifyMinInterval := getEnvAsDuration("NOTIFY_MIN_INTERVAL", 5*time.Minute)

	Cfg = &AppConfig{
		DatabasePath: getEnv("DATABASE_PATH", "./cargodocs.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		ReviewConfidenceThreshold: confidenceThreshold,

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "Cargodocs"),

		ValidationNotifyEmail: getEnv("VALIDATION_NOTIFY_EMAIL", ""),
		NotifyMinInterval:     notifyMinInterval,
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.SenderEmail == "noreply@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly (e.g., your Mailgun sender) when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	log.Printf("Configuration loaded: LogLevel=%s, DBPath=%s, EmailProvider=%s, ConfidenceThreshold=%.2f",
		Cfg.LogLevel, Cfg.DatabasePath, Cfg.EmailServiceProvider, Cfg.ReviewConfidenceThreshold)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
