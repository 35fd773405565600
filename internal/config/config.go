package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coqui-pos/api/internal/pricing"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	AMQPURL        string
	AllowedOrigins []string

	// Empty means the embedded menu.
	MenuFile string
	TaxRate  decimal.Decimal
	NodeID   int64

	CardAuthDelay time.Duration
	// Card charges above this amount are declined. Zero disables declines.
	CardDeclineAbove decimal.Decimal

	// bcrypt hashes used when DATABASE_URL is empty
	ManagerPasswordHash  string
	EmployeePasswordHash string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8081"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AMQPURL:              os.Getenv("AMQP_URL"),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MenuFile:             os.Getenv("MENU_FILE"),
		ManagerPasswordHash:  os.Getenv("MANAGER_PASSWORD_HASH"),
		EmployeePasswordHash: os.Getenv("EMPLOYEE_PASSWORD_HASH"),
	}

	var err error
	if cfg.TaxRate, err = decimal.NewFromString(getEnv("TAX_RATE", pricing.DefaultTaxRate)); err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	if cfg.CardDeclineAbove, err = decimal.NewFromString(getEnv("CARD_DECLINE_ABOVE", "0")); err != nil {
		return nil, fmt.Errorf("CARD_DECLINE_ABOVE: %w", err)
	}
	if cfg.CardAuthDelay, err = time.ParseDuration(getEnv("CARD_AUTH_DELAY", "2s")); err != nil {
		return nil, fmt.Errorf("CARD_AUTH_DELAY: %w", err)
	}
	if cfg.NodeID, err = strconv.ParseInt(getEnv("NODE_ID", "1"), 10, 64); err != nil {
		return nil, fmt.Errorf("NODE_ID: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
