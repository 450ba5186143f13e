package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           int
	APIKey         string
	VerboseLogging bool
	RateLimit      int
	HTTPTimeout    time.Duration
	StoragePath    string

	// Overrides applied on top of the stored settings.
	Key           string
	DefaultSender string
	DefaultTTL    int
	BaseURL       string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8765),
		APIKey:         os.Getenv("API_KEY"),
		VerboseLogging: getEnvBool("VERBOSE_LOGGING", false),
		RateLimit:      getEnvInt("RATE_LIMIT", 60),
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT", 30)) * time.Second,
		StoragePath:    getEnvString("STORAGE_PATH", "./data/autoremote.db"),

		Key:           os.Getenv("AUTOREMOTE_KEY"),
		DefaultSender: os.Getenv("AUTOREMOTE_DEFAULT_SENDER"),
		DefaultTTL:    getEnvInt("AUTOREMOTE_DEFAULT_TTL", 0),
		BaseURL:       os.Getenv("AUTOREMOTE_BASEURL"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.DefaultTTL < 0 {
		return nil, fmt.Errorf("AUTOREMOTE_DEFAULT_TTL must not be negative")
	}

	return cfg, nil
}

// ValidateServe checks what the bridge server needs beyond Load.
func (c *Config) ValidateServe() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable is required")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
