package app

import (
	"os"
	"strconv"
	"time"

	"github.com/tubeworks/accounts/internal/accounts/media"
	"github.com/tubeworks/accounts/pkg/jwtx"
)

type Config struct {
	Issuer string // Issuer claim for both token classes (default: tubeworks-accounts)

	AccessTokenSecret  string        // Required: HMAC secret for access tokens
	RefreshTokenSecret string        // Required: HMAC secret for refresh tokens, independent of the access secret
	AccessTokenTTL     time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL    time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./accounts.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Minio media.MinioConfig // Object store for avatars and cover images

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer: getEnvOrDefault("ACCOUNTS_ISSUER", "tubeworks-accounts"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),

		DatabaseFile: getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:   getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),

		Minio: media.MinioConfig{
			Endpoint:      os.Getenv("MINIO_ENDPOINT"),
			AccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:     os.Getenv("MINIO_SECRET_KEY"),
			Bucket:        getEnvOrDefault("MINIO_BUCKET", "user-media"),
			UseSSL:        getEnvBoolOrDefault("MINIO_USE_SSL", false),
			PublicBaseURL: os.Getenv("MINIO_PUBLIC_BASE_URL"),
		},

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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
