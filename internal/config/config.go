package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	ClinicName    string
	ClinicTZ      string
	OperatorEmail string

	// Email delivery
	EmailProvider     string // "sendgrid", "ses" or "stub"
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
	AWSRegion         string

	// TeleCRM lead channel
	TeleCRMBaseURL      string
	TeleCRMEnterpriseID string
	TeleCRMAPIToken     string
	TeleCRMLeadSource   string

	// Booking pipeline
	AllocationMaxAttempts int
	NotifyTimeout         time.Duration

	// Rate limiting for public intake endpoints
	RedisAddr       string
	RedisPassword   string
	RateLimitPerMin int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ClinicName:    getEnv("CLINIC_NAME", "Sasha Smiles"),
		ClinicTZ:      getEnv("CLINIC_TZ", "Asia/Kolkata"),
		OperatorEmail: getEnv("OPERATOR_EMAIL", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Sasha Smiles"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Sasha Smiles"),
		AWSRegion:         getEnv("AWS_REGION", "ap-south-1"),

		TeleCRMBaseURL:      getEnv("TELECRM_API_URL", "https://next-api.telecrm.in"),
		TeleCRMEnterpriseID: getEnv("TELECRM_ENTERPRISE_ID", ""),
		TeleCRMAPIToken:     getEnv("TELECRM_API_TOKEN", ""),
		TeleCRMLeadSource:   getEnv("TELECRM_LEAD_SOURCE", "SashaDental-webform"),

		AllocationMaxAttempts: getEnvAsInt("ALLOCATION_MAX_ATTEMPTS", 5),
		NotifyTimeout:         getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RateLimitPerMin: getEnvAsInt("RATE_LIMIT_PER_MIN", 30),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
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

func getEnvAsSlice(key string, defaultValue []string) []string {
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

// Location resolves the clinic timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
