package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shopify-quantity-rules/internal/domain"

	"github.com/shopspring/decimal"
)

// Storage drivers
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port           string
	AppURL         string
	FrontendURL    string
	AllowedOrigins []string
	RequestTimeout time.Duration

	// Logging configuration
	LogLevel string

	// Storage configuration
	StorageDriver   string
	MongoURI        string
	MongoDatabase   string
	RedisURL        string
	RulesetCacheTTL time.Duration

	// Shopify app credentials
	ShopifyAPIKey        string
	ShopifyAPISecret     string
	ShopifyWebhookSecret string
	ShopifyScopes        []string
	ShopifyAPIVersion    string
	EncryptionKey        string

	// Billing configuration
	Billing BillingConfig
}

// BillingConfig describes the recurring plan
type BillingConfig struct {
	Enabled   bool
	PlanName  string
	Price     decimal.Decimal
	Currency  string
	Interval  domain.BillingInterval
	TrialDays int
	Test      bool
}

// Plan converts the billing config into the plan sent to Shopify
func (b BillingConfig) Plan() domain.SubscriptionPlan {
	return domain.SubscriptionPlan{
		Name:      b.PlanName,
		Price:     b.Price,
		Currency:  b.Currency,
		Interval:  b.Interval,
		TrialDays: b.TrialDays,
		Test:      b.Test,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	price, err := decimal.NewFromString(getEnv("BILLING_PRICE", "4.99"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_PRICE: %w", err)
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		AppURL:               strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		FrontendURL:          strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		AllowedOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		StorageDriver:        getEnv("STORAGE_DRIVER", StorageMongo),
		MongoURI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnv("MONGODB_DATABASE", "quantity_rules"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RulesetCacheTTL:      getEnvDuration("RULESET_CACHE_TTL", 5*time.Minute),
		ShopifyAPIKey:        getEnv("SHOPIFY_API_KEY", ""),
		ShopifyAPISecret:     getEnv("SHOPIFY_API_SECRET", ""),
		ShopifyWebhookSecret: getEnv("SHOPIFY_WEBHOOK_SECRET", ""),
		ShopifyScopes:        splitList(getEnv("SHOPIFY_SCOPES", "read_products")),
		ShopifyAPIVersion:    getEnv("SHOPIFY_API_VERSION", "2025-01"),
		EncryptionKey:        getEnv("ENCRYPTION_KEY", ""),
		Billing: BillingConfig{
			Enabled:   getEnvBool("BILLING_ENABLED", true),
			PlanName:  getEnv("BILLING_PLAN_NAME", "Quantity Rules Pro"),
			Price:     price,
			Currency:  strings.ToUpper(getEnv("BILLING_CURRENCY", "USD")),
			Interval:  domain.BillingInterval(strings.ToUpper(getEnv("BILLING_INTERVAL", string(domain.IntervalEvery30Days)))),
			TrialDays: getEnvInt("BILLING_TRIAL_DAYS", 7),
			Test:      getEnvBool("BILLING_TEST", true),
		},
	}

	// The API secret signs webhooks unless a dedicated secret is provided
	if cfg.ShopifyWebhookSecret == "" {
		cfg.ShopifyWebhookSecret = cfg.ShopifyAPISecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", c.LogLevel)
	}

	if c.StorageDriver != StorageMongo && c.StorageDriver != StorageMemory {
		return fmt.Errorf("invalid storage driver: %s (must be mongo/memory)", c.StorageDriver)
	}

	if c.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}

	if c.Billing.Interval != domain.IntervalEvery30Days && c.Billing.Interval != domain.IntervalAnnual {
		return fmt.Errorf("invalid billing interval: %s (must be EVERY_30_DAYS/ANNUAL)", c.Billing.Interval)
	}
	if c.Billing.TrialDays < 0 {
		return fmt.Errorf("BILLING_TRIAL_DAYS must not be negative")
	}
	if !c.Billing.Price.IsPositive() {
		return fmt.Errorf("BILLING_PRICE must be positive")
	}

	// Memory storage is for local development without a partner app
	if c.StorageDriver == StorageMongo {
		if c.ShopifyAPIKey == "" {
			return fmt.Errorf("SHOPIFY_API_KEY is required with %s storage", StorageMongo)
		}
		if c.ShopifyAPISecret == "" {
			return fmt.Errorf("SHOPIFY_API_SECRET is required with %s storage", StorageMongo)
		}
	}

	return nil
}

// GetServerAddress returns the listen address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return defaultVal
		}
		return b
	}
	return defaultVal
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal
		}
		return i
	}
	return defaultVal
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
