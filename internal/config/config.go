package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// DataFile is the path of the JSON file the account registry is stored in.
	// Default: ./data/accounts.json
	DataFile string

	// HTTPPort is the port the HTTP API listens on when serving.
	// Default: 4580
	HTTPPort int

	// LogLevel controls the verbosity of logging (debug, info, warn, error).
	// Default: "info"
	LogLevel string
}

// Load creates a Config instance by reading environment variables.
// Missing values are replaced with defaults.
func Load() *Config {
	cfg := &Config{
		DataFile: "./data/accounts.json",
		HTTPPort: 4580,
		LogLevel: "info",
	}

	if dataFile := os.Getenv("DATA_FILE"); dataFile != "" {
		cfg.DataFile = dataFile
	}

	// Invalid values are kept so Validate can report them.
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.HTTPPort = port
		} else {
			cfg.HTTPPort = -1
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg
}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort >= 65536 {
		return fmt.Errorf("invalid HTTP_PORT: %d (must be 1-65535)", c.HTTPPort)
	}
	if c.DataFile == "" {
		return fmt.Errorf("DATA_FILE cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q (must be debug, info, warn or error)", c.LogLevel)
	}
	return nil
}
