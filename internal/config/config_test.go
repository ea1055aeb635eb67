package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.URL != "https://scihub.copernicus.eu/apihub/" {
		t.Errorf("unexpected default URL %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 60*time.Second {
		t.Errorf("unexpected default timeout %s", cfg.API.Timeout)
	}
	if cfg.Download.MaxAttempts != 10 {
		t.Errorf("unexpected default max attempts %d", cfg.Download.MaxAttempts)
	}
	if cfg.Download.Directory != "." {
		t.Errorf("unexpected default directory %q", cfg.Download.Directory)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SCIHUB_URL", "https://hub.example.com/dhus/")
	t.Setenv("SCIHUB_USER", "alice")
	t.Setenv("SCIHUB_PASSWORD", "secret")
	t.Setenv("SCIHUB_TIMEOUT", "30s")
	t.Setenv("DOWNLOAD_MAX_ATTEMPTS", "3")
	t.Setenv("DOWNLOAD_CHECKSUM", "true")
	t.Setenv("DOWNLOAD_METADATA_ATTEMPTS", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.URL != "https://hub.example.com/dhus/" {
		t.Errorf("URL not read from environment: %q", cfg.API.URL)
	}
	if cfg.API.User != "alice" || cfg.API.Password != "secret" {
		t.Errorf("credentials not read from environment")
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("timeout not read from environment: %s", cfg.API.Timeout)
	}
	if cfg.Download.MaxAttempts != 3 || !cfg.Download.Checksum {
		t.Errorf("download settings not read from environment: %+v", cfg.Download)
	}
	if cfg.Download.MetadataAttempts != 0 {
		t.Errorf("metadata attempts 0 (unbounded) must be accepted, got %d", cfg.Download.MetadataAttempts)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging settings not read from environment: %+v", cfg.Logging)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: APIConfig{URL: "https://hub/", Timeout: time.Minute},
			Download: DownloadConfig{
				Directory:        ".",
				MaxAttempts:      10,
				MetadataAttempts: 10,
				MetadataWait:     time.Minute,
			},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty URL", func(c *Config) { c.API.URL = "" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"zero max attempts", func(c *Config) { c.Download.MaxAttempts = 0 }},
		{"negative metadata attempts", func(c *Config) { c.Download.MetadataAttempts = -1 }},
		{"zero metadata wait", func(c *Config) { c.Download.MetadataWait = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		cfg := valid()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted an invalid config", tc.name)
		}
	}
}
