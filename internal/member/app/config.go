package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Required: expected issuer of incoming access tokens
	JWTSecret string // Required: shared HMAC secret for verifying access tokens

	DatabaseFile  string        // Optional: path to SQLite database file (default: ./member.db)
	PepperFile    string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	InviteTTL     time.Duration // Optional: how long invitations stay redeemable (default: 7 days)
	SweepInterval time.Duration // Optional: how often expired invitations are swept (default: 1h)
	Notifier      string        // Optional: email backend (ses, smtp, log) (default: log)
	PublicBaseURL string        // Optional: base URL of the accept page in invitation emails

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:    getEnvOrDefault("MEMBERD_ISSUER", "crewdesk-auth"),
		JWTSecret: os.Getenv("MEMBERD_JWT_SECRET"),

		DatabaseFile:  getEnvOrDefault("MEMBERD_DATABASE_FILE", "member.db"),
		PepperFile:    getEnvOrDefault("MEMBERD_PEPPER_FILE", "pepper"),
		InviteTTL:     getEnvDurationOrDefault("MEMBERD_INVITE_TTL", 7*24*time.Hour),
		SweepInterval: getEnvDurationOrDefault("MEMBERD_SWEEP_INTERVAL", time.Hour),
		Notifier:      getEnvOrDefault("MEMBERD_NOTIFIER", "log"),
		PublicBaseURL: getEnvOrDefault("MEMBERD_PUBLIC_BASE_URL", "http://localhost:8080"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
