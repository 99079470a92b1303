package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Draft lifetime in Redis; an abandoned wizard expires after this.
	DraftTTL time.Duration

	// Xendit payment gateway
	XenditAPIKey        string
	XenditCallbackToken string
	XenditBaseURL       string
	InvoiceDuration     time.Duration
	SuccessRedirectURL  string
	FailureRedirectURL  string
	AllowFakePayments   bool

	// Stream chat/video token minting
	StreamAPIKey    string
	StreamAPISecret string
	StreamTokenTTL  time.Duration

	// Gemini post-session diagnosis; the stub analyzer runs without a key
	GeminiAPIKey string
	GeminiModel  string

	// Bearer auth for client-facing endpoints
	AuthJWTSecret string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DraftTTL: getEnvAsDuration("BOOKING_DRAFT_TTL", 24*time.Hour),

		XenditAPIKey:        getEnv("XENDIT_API_KEY", ""),
		XenditCallbackToken: getEnv("XENDIT_CALLBACK_TOKEN", ""),
		XenditBaseURL:       getEnv("XENDIT_BASE_URL", ""),
		InvoiceDuration:     getEnvAsDuration("XENDIT_INVOICE_DURATION", 24*time.Hour),
		SuccessRedirectURL:  getEnv("BOOKING_SUCCESS_URL", ""),
		FailureRedirectURL:  getEnv("BOOKING_FAILURE_URL", ""),
		AllowFakePayments:   getEnvAsBool("ALLOW_FAKE_PAYMENTS", false),

		StreamAPIKey:    getEnv("STREAM_API_KEY", ""),
		StreamAPISecret: getEnv("STREAM_API_SECRET", ""),
		StreamTokenTTL:  getEnvAsDuration("STREAM_TOKEN_TTL", 0),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Mentari Health"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
	}
}

// SuccessURL returns the configured success redirect, falling back to the public base URL.
func (c *Config) SuccessURL() string {
	if c.SuccessRedirectURL != "" {
		return c.SuccessRedirectURL
	}
	return strings.TrimRight(c.PublicBaseURL, "/") + "/booking/success"
}

// FailureURL returns the configured failure redirect, falling back to the public base URL.
func (c *Config) FailureURL() string {
	if c.FailureRedirectURL != "" {
		return c.FailureRedirectURL
	}
	return strings.TrimRight(c.PublicBaseURL, "/") + "/booking/failed"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
