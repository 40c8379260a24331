package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adolfofidel/afdevs-admin/pkg/azul"
)

// Config holds all application configuration loaded from environment variables.
// Gateway credentials are read once here and injected at construction; nothing
// re-reads the environment per call.
type Config struct {
	Port          int
	DatabaseURL   string
	EncryptionKey string
	CORSOrigins   []string

	// AuthIssuer is the identity provider's issuer URL; tokens are verified
	// against its JWKS. Authentication itself is delegated to the provider.
	AuthIssuer string

	// CronSecret guards the recurring-billing endpoint. Empty disables the
	// check (local development only).
	CronSecret string

	// PayPalWebhookSecret is the shared secret for webhook signature
	// verification. Empty disables the check (local development only).
	PayPalWebhookSecret string

	Azul azul.Config
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4001"))

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	encKey := getEnv("ENCRYPTION_KEY", "")
	if encKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required (must be exactly 32 bytes)")
	}
	if len(encKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(encKey))
	}

	authIssuer := getEnv("AUTH_ISSUER", "")
	if authIssuer == "" {
		return nil, fmt.Errorf("AUTH_ISSUER is required")
	}

	azulCfg := azul.Config{
		MerchantID:  getEnv("AZUL_MERCHANT_ID", ""),
		Auth1:       getEnv("AZUL_AUTH1", ""),
		Auth2:       getEnv("AZUL_AUTH2", ""),
		Channel:     getEnv("AZUL_CHANNEL", "EC"),
		Environment: getEnv("AZUL_ENVIRONMENT", "sandbox"),
	}
	if err := azulCfg.Validate(); err != nil {
		return nil, err
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,https://admin.afdevs.com"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		EncryptionKey:       encKey,
		CORSOrigins:         origins,
		AuthIssuer:          authIssuer,
		CronSecret:          getEnv("CRON_SECRET", ""),
		PayPalWebhookSecret: getEnv("PAYPAL_WEBHOOK_SECRET", ""),
		Azul:                azulCfg,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
