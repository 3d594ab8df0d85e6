package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	JWTSecret string
	JWTTTL    time.Duration

	DefaultCurrency string

	// Cron specs (5-field, robfig/cron standard parser)
	RecurringCron   string
	RatesSyncCron   string
	BudgetAlertCron string

	// Exchange-rate feed
	RatesURL          string
	RatesBaseCurrency string

	// SMTP for budget alerts
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SenderEmail string

	// AMQP event publishing (disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		DBConn:   getEnv("DB_CONN", "host=localhost port=5432 user=wallet password=wallet dbname=wallet sslmode=disable"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),

		RecurringCron:   getEnv("RECURRING_CRON", "0 1 * * *"),
		RatesSyncCron:   getEnv("RATES_SYNC_CRON", "30 0 * * *"),
		BudgetAlertCron: getEnv("BUDGET_ALERT_CRON", "0 8 * * *"),

		RatesURL:          getEnv("RATES_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"),
		RatesBaseCurrency: getEnv("RATES_BASE_CURRENCY", "EUR"),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    getEnv("SMTP_USERNAME", ""),
		SMTPPass:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail: getEnv("SENDER_EMAIL", "no-reply@wallet.local"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "wallet"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DefaultCurrency == "" {
		return nil, fmt.Errorf("DEFAULT_CURRENCY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
