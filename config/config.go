package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// BaseURL is the public origin encoded into QR payment URLs.
	BaseURL string

	// Payment configuration
	Currency    string
	PaymentMode string // "local" or "gateway"

	// Gateway configuration (remote variant)
	GatewayBaseURL string
	GatewayToken   string

	// Card recognition configuration
	RecognizerBaseURL string
	RecognizerToken   string
	RecognizerModel   string

	// Redis configuration
	RedisURL string

	// Merchant credentials (single mocked identity)
	MerchantEmail        string
	MerchantPasswordHash string

	// Timeout configuration
	SessionTTL time.Duration
	IntentTTL  time.Duration

	// Simulated latency
	CardProcessingDelay time.Duration
	LoginDelay          time.Duration

	// PubNub configuration (settlement notifications)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubChannel      string

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8090"),

		// Payment
		Currency:    getEnv("CURRENCY", "USD"),
		PaymentMode: getEnv("PAYMENT_MODE", "local"),

		// Gateway
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", ""),
		GatewayToken:   getEnv("GATEWAY_TOKEN", ""),

		// Recognition
		RecognizerBaseURL: getEnv("RECOGNIZER_BASE_URL", ""),
		RecognizerToken:   getEnv("RECOGNIZER_TOKEN", ""),
		RecognizerModel:   getEnv("RECOGNIZER_MODEL", "gemini"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// Merchant
		MerchantEmail:        getEnv("MERCHANT_EMAIL", "merchant@example.com"),
		MerchantPasswordHash: getEnv("MERCHANT_PASSWORD_HASH", ""),

		// Timeouts
		SessionTTL: getEnvAsDuration("SESSION_TTL", "12h"),
		IntentTTL:  getEnvAsDuration("INTENT_TTL", "15m"),

		// Simulated latency
		CardProcessingDelay: getEnvAsDuration("CARD_PROCESSING_DELAY", "2s"),
		LoginDelay:          getEnvAsDuration("LOGIN_DELAY", "1s"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubChannel:      getEnv("PUBNUB_CHANNEL", "settlement-notifications"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
