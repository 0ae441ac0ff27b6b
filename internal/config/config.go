package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Backend locator (client side)
	APIURL          string
	PageURL         string
	ProbeTimeout    time.Duration
	DispatchTimeout time.Duration
	DevPortMap      map[string]string

	// Storage
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// HTTP surface
	CORSAllowedOrigins []string
	ContactRateLimit   float64
	ContactRateBurst   int
	AdminJWTSecret     string

	// Email
	EmailProvider     string
	SalesInbox        string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// DefaultDevPortMap maps dev front-end ports (Vite dev, Vite preview, CRA) to the dev API port.
const DefaultDevPortMap = "5173:8000,4173:8000,3000:8000"

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIURL:          strings.TrimSpace(getEnv("API_URL", "")),
		PageURL:         strings.TrimSpace(getEnv("PAGE_URL", "http://localhost:5173")),
		ProbeTimeout:    getEnvAsDuration("PROBE_TIMEOUT", 3500*time.Millisecond),
		DispatchTimeout: getEnvAsDuration("DISPATCH_TIMEOUT", 3500*time.Millisecond),
		DevPortMap:      ParsePortMap(getEnv("DEV_PORT_MAP", DefaultDevPortMap)),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:4173")),
		ContactRateLimit:   getEnvAsFloat("CONTACT_RATE_LIMIT", 1),
		ContactRateBurst:   getEnvAsInt("CONTACT_RATE_BURST", 5),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		SalesInbox:        getEnv("SALES_INBOX", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "AI Receptionist"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// ParsePortMap parses "5173:8000,3000:8000" into a front-end -> backend port map.
// Malformed pairs are skipped.
func ParsePortMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range splitList(raw) {
		front, back, ok := strings.Cut(pair, ":")
		front, back = strings.TrimSpace(front), strings.TrimSpace(back)
		if !ok || !isPort(front) || !isPort(back) {
			continue
		}
		out[front] = back
	}
	return out
}

func isPort(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0 && n < 65536
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
