package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"csvdash/internal/errors"
)

const (
	DefaultAPIBaseURL        = "http://localhost:8000/api"
	DefaultCleaningThreshold = 75.0
)

// Config represents the complete application configuration
type Config struct {
	API       APIConfig
	Server    ServerConfig
	Dashboard DashboardConfig
	Logging   LoggingConfig
}

// APIConfig holds settings for the external analysis service
type APIConfig struct {
	BaseURL       string
	UploadTimeout time.Duration
}

// UploadURL returns the CSV upload endpoint under the configured base URL
func (c APIConfig) UploadURL() string {
	return c.BaseURL + "/upload-csv/"
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
}

// DashboardConfig holds rendering settings. Values may be overridden by the YAML file
// named in DASHBOARD_CONFIG.
type DashboardConfig struct {
	CleaningThreshold float64
	Locale            string
	ChartWidth        int
	ChartHeight       int
	MeansChart        string // "bar" or "line"
	HiddenTargets     []string
	DemoMode          bool
	File              string
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		API:       *loadAPIConfig(),
		Server:    *loadServerConfig(),
		Dashboard: *loadDashboardConfig(),
		Logging:   LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if config.Dashboard.File != "" {
		if err := applyDashboardFile(&config.Dashboard, config.Dashboard.File); err != nil {
			return nil, errors.Wrap(err, "failed to load dashboard file")
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAPIConfig() *APIConfig {
	return &APIConfig{
		BaseURL:       strings.TrimRight(getEnvOrDefault("API_BASE_URL", DefaultAPIBaseURL), "/"),
		UploadTimeout: getEnvDurationOrDefault("UPLOAD_TIMEOUT", 60*time.Second),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		CleaningThreshold: getEnvFloatOrDefault("CLEANING_THRESHOLD", DefaultCleaningThreshold),
		Locale:            getEnvOrDefault("LOCALE", "es"),
		ChartWidth:        getEnvIntOrDefault("CHART_WIDTH", 800),
		ChartHeight:       getEnvIntOrDefault("CHART_HEIGHT", 400),
		MeansChart:        getEnvOrDefault("MEANS_CHART", "bar"),
		DemoMode:          getEnvBoolOrDefault("DEMO_MODE", true),
		File:              os.Getenv("DASHBOARD_CONFIG"),
	}
}

func validateConfig(config *Config) error {
	if config.API.BaseURL == "" {
		return errors.ConfigInvalid("API base URL is required")
	}
	if !strings.HasPrefix(config.API.BaseURL, "http://") && !strings.HasPrefix(config.API.BaseURL, "https://") {
		return errors.ConfigInvalid(fmt.Sprintf("API base URL must be http(s): %s", config.API.BaseURL))
	}
	if config.API.UploadTimeout <= 0 {
		return errors.ConfigInvalid("upload timeout must be positive")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	d := config.Dashboard
	if d.CleaningThreshold <= 0 || d.CleaningThreshold > 100 {
		return errors.ConfigInvalid(fmt.Sprintf("cleaning threshold %.2f outside (0,100]", d.CleaningThreshold))
	}
	if d.ChartWidth < 100 || d.ChartHeight < 100 {
		return errors.ConfigInvalid("chart size must be at least 100x100")
	}
	if d.MeansChart != "bar" && d.MeansChart != "line" {
		return errors.ConfigInvalid(fmt.Sprintf("means chart must be bar or line, got %q", d.MeansChart))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
