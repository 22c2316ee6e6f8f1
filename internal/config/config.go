// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/valpere/AttendScrapexter/internal/browser"
)

const (
	DefaultPortalURL = "http://mitsims.in/"
	DefaultUserAgent = browser.DefaultUserAgent
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			StaticDir:         "dist",
			RequestTimeout:    120 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			CORSOrigins:       []string{"*"},
		},
		Browser: BrowserConfig{
			Headless:       true,
			MaxConcurrent:  3,
			UserAgent:      DefaultUserAgent,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			BlockResources: []string{"image", "media", "font"},
		},
		Scraper: ScraperConfig{
			PortalURL:     DefaultPortalURL,
			ActionTimeout: 30 * time.Second,
			FormTimeout:   15 * time.Second,
			LoginTimeout:  30 * time.Second,
			DataTimeout:   20 * time.Second,
			SettleDelay:   500 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 0.5,
			Burst:             5,
			IdleTTL:           10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the effective configuration: defaults, then filename if it is
// not empty, then environment variables.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		data, err := readFile(filename)
		if err != nil {
			return nil, err
		}
		if err := decodeInto(cfg, data); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file without the environment overlay.
func LoadFromFile(filename string) (*Config, error) {
	data, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes on top of the defaults
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	cfg := Default()
	if err := decodeInto(cfg, data); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// ApplyEnv overlays environment variables. Each field is looked up by its
// section-prefixed name (SERVER_PORT) and then by its bare tag (PORT).
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(cfg *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	var buf bytes.Buffer
	if err := SaveToWriter(cfg, &buf); err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// SaveToWriter saves configuration to an io.Writer
func SaveToWriter(cfg *Config, writer io.Writer) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return enc.Close()
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func readFile(filename string) ([]byte, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return data, nil
}

// decodeInto unmarshals YAML over cfg, so keys absent from the document keep
// their current values. Unknown keys are rejected.
func decodeInto(cfg *Config, data []byte) error {
	expanded := expandEnvironmentVariables(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML configuration: %w", err)
	}
	return nil
}

// expandEnvironmentVariables substitutes ${VAR} references in the configuration
func expandEnvironmentVariables(content string) string {
	return os.ExpandEnv(content)
}
