package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// DefaultAppID is the public Ubisoft application identifier used when
// UBI_APP_ID is not supplied.
const DefaultAppID = "3587dcbb-7f81-457c-9781-0e3f29f6f56a"

const defaultAPIBaseURL = "https://public-ubiservices.ubi.com"

// FailurePolicy names what a single-player read does when the live
// pipeline fails.
type FailurePolicy string

const (
	// FallbackToDemo degrades to synthetic data instead of surfacing
	// the upstream error.
	FallbackToDemo FailurePolicy = "demo"

	// SurfaceError propagates the upstream error to the caller.
	SurfaceError FailurePolicy = "error"
)

type Config struct {
	UbiEmail    string
	UbiPassword string
	UbiAppID    string

	// APIBaseURL points at the Ubisoft public services host. Only
	// overridden in tests.
	APIBaseURL string

	ServerPort    string
	LogLevel      string
	DevMode       bool
	FailurePolicy FailurePolicy
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		UbiEmail:      strings.TrimSpace(getEnv("UBI_EMAIL", "")),
		UbiPassword:   strings.TrimSpace(getEnv("UBI_PASSWORD", "")),
		UbiAppID:      getEnv("UBI_APP_ID", DefaultAppID),
		APIBaseURL:    getEnv("UBI_API_BASE_URL", defaultAPIBaseURL),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DevMode:       getEnv("DEV_MODE", "false") == "true",
		FailurePolicy: FallbackToDemo,
	}

	if getEnv("FAILURE_POLICY", "") == string(SurfaceError) {
		cfg.FailurePolicy = SurfaceError
	}

	if !cfg.HasCredentials() {
		logger.Warn().Msg("UBI_EMAIL or UBI_PASSWORD missing, live lookups will fail until configured")
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("dev_mode", cfg.DevMode).
		Str("failure_policy", string(cfg.FailurePolicy)).
		Msg("configuration loaded")

	return cfg, nil
}

// HasCredentials reports whether live upstream access is configured.
func (c *Config) HasCredentials() bool {
	return c.UbiEmail != "" && c.UbiPassword != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
