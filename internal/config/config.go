package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Cashfree holds the payment gateway credentials. All of these are
// server-side only and must never reach a client response.
type Cashfree struct {
	AppID         string
	SecretKey     string
	WebhookSecret string
	Mode          string // "test" or "live"
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string
	CORSOrigins []string

	// Admin console: allow-list resolved once at startup, never mutated.
	AdminEmails   []string
	AdminPassword string

	Cashfree Cashfree

	// Blob store signing for deliverable download/upload URLs.
	DownloadBaseURL    string
	DownloadSigningKey string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4001"))

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	adminEmails := splitList(getEnv("ADMIN_EMAILS", ""))
	if len(adminEmails) == 0 {
		return nil, fmt.Errorf("ADMIN_EMAILS is required (comma-separated allow-list)")
	}

	adminPassword := getEnv("ADMIN_PASSWORD", "")
	if adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	cf := Cashfree{
		AppID:         getEnv("CASHFREE_APP_ID", ""),
		SecretKey:     getEnv("CASHFREE_SECRET_KEY", ""),
		WebhookSecret: getEnv("CASHFREE_WEBHOOK_SECRET", ""),
		Mode:          getEnv("CASHFREE_MODE", "test"),
	}
	if cf.AppID == "" || cf.SecretKey == "" {
		return nil, fmt.Errorf("CASHFREE_APP_ID and CASHFREE_SECRET_KEY are required")
	}
	if cf.WebhookSecret == "" {
		return nil, fmt.Errorf("CASHFREE_WEBHOOK_SECRET is required")
	}
	if cf.Mode != "test" && cf.Mode != "live" {
		return nil, fmt.Errorf("CASHFREE_MODE must be \"test\" or \"live\", got %q", cf.Mode)
	}

	signingKey := getEnv("DOWNLOAD_SIGNING_KEY", "")
	if signingKey == "" {
		return nil, fmt.Errorf("DOWNLOAD_SIGNING_KEY is required")
	}

	origins := splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		JWTSecret:          jwtSecret,
		CORSOrigins:        origins,
		AdminEmails:        adminEmails,
		AdminPassword:      adminPassword,
		Cashfree:           cf,
		DownloadBaseURL:    getEnv("DOWNLOAD_BASE_URL", "http://localhost:4001/files"),
		DownloadSigningKey: signingKey,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
