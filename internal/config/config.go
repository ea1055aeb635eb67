// Package config provides environment-driven configuration for the SciHub
// client and its CLI.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the complete application configuration loaded from
// environment variables.
type Config struct {
	API      APIConfig      `envPrefix:"SCIHUB_"`
	Download DownloadConfig `envPrefix:"DOWNLOAD_"`
	Logging  LoggingConfig  `envPrefix:"LOG_"`
}

// APIConfig contains hub endpoint and credential configuration.
// Credentials are opaque here: they are attached as-is to every call.
type APIConfig struct {
	URL      string        `env:"URL" envDefault:"https://scihub.copernicus.eu/apihub/"`
	User     string        `env:"USER"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// DownloadConfig contains download behavior configuration.
type DownloadConfig struct {
	Directory     string `env:"DIR" envDefault:"."`
	MaxAttempts   int    `env:"MAX_ATTEMPTS" envDefault:"10"`
	Checksum      bool   `env:"CHECKSUM" envDefault:"false"`
	CheckExisting bool   `env:"CHECK_EXISTING" envDefault:"false"`

	// MetadataAttempts bounds the metadata-fetch retry loop inside a
	// download; 0 retries forever.
	MetadataAttempts int           `env:"METADATA_ATTEMPTS" envDefault:"10"`
	MetadataWait     time.Duration `env:"METADATA_WAIT" envDefault:"60s"`

	// TransportVersion is the transfer backend version reported to the
	// large-file resume defect gate. Empty means unaffected.
	TransportVersion string `env:"TRANSPORT_VERSION"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid. Credentials are not
// required here; commands that need them check at call time so that
// flag-supplied credentials can fill the gap.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("hub URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %s", c.API.Timeout)
	}

	if c.Download.MaxAttempts < 1 {
		return fmt.Errorf("download max attempts must be at least 1, got %d", c.Download.MaxAttempts)
	}
	if c.Download.MetadataAttempts < 0 {
		return fmt.Errorf("metadata attempts must be 0 (unbounded) or positive, got %d", c.Download.MetadataAttempts)
	}
	if c.Download.MetadataWait <= 0 {
		return fmt.Errorf("metadata wait must be positive, got %s", c.Download.MetadataWait)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, text", c.Logging.Format)
	}

	return nil
}
