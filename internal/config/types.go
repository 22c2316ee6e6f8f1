// internal/config/types.go

// Package config holds the runtime configuration for the attendance service
// and CLI. Values come from defaults, an optional YAML file and the
// environment, in that order.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Browser   BrowserConfig   `yaml:"browser" json:"browser"`
	Scraper   ScraperConfig   `yaml:"scraper" json:"scraper"`
	Log       LogConfig       `yaml:"log" json:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host string `yaml:"host" json:"host" envconfig:"HOST"`
	Port int    `yaml:"port" json:"port" envconfig:"PORT"`

	// StaticDir holds the built frontend. Missing directory disables SPA serving.
	StaticDir string `yaml:"static_dir" json:"static_dir" envconfig:"STATIC_DIR"`

	// RequestTimeout bounds a whole scrape request, queueing included.
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" json:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`

	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins" envconfig:"CORS_ORIGINS"`

	// ShowTechnicalErrors appends the underlying cause to error details.
	ShowTechnicalErrors bool `yaml:"show_technical_errors" json:"show_technical_errors" envconfig:"SHOW_TECHNICAL_ERRORS"`
}

// BrowserConfig configures the shared headless Chrome.
type BrowserConfig struct {
	Headless      bool   `yaml:"headless" json:"headless" envconfig:"HEADLESS"`
	ExecPath      string `yaml:"exec_path" json:"exec_path" envconfig:"CHROME_PATH"`
	MaxConcurrent int    `yaml:"max_concurrent" json:"max_concurrent" envconfig:"MAX_CONCURRENT_SCRAPES"`

	UserAgent      string   `yaml:"user_agent" json:"user_agent" envconfig:"USER_AGENT"`
	ViewportWidth  int      `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int      `yaml:"viewport_height" json:"viewport_height"`
	BlockResources []string `yaml:"block_resources" json:"block_resources" envconfig:"BLOCK_RESOURCES"`
}

// ScraperConfig configures the portal login flow.
type ScraperConfig struct {
	PortalURL     string        `yaml:"portal_url" json:"portal_url" envconfig:"PORTAL_URL"`
	ActionTimeout time.Duration `yaml:"action_timeout" json:"action_timeout"`
	FormTimeout   time.Duration `yaml:"form_timeout" json:"form_timeout"`
	LoginTimeout  time.Duration `yaml:"login_timeout" json:"login_timeout"`
	DataTimeout   time.Duration `yaml:"data_timeout" json:"data_timeout"`
	SettleDelay   time.Duration `yaml:"settle_delay" json:"settle_delay"`
}

// LogConfig selects level and encoder.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" json:"format" envconfig:"LOG_FORMAT"`
}

// RateLimitConfig throttles the scrape endpoint per client IP.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled" envconfig:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" envconfig:"RATE_LIMIT_RPS"`
	Burst             int           `yaml:"burst" json:"burst" envconfig:"RATE_LIMIT_BURST"`
	IdleTTL           time.Duration `yaml:"idle_ttl" json:"idle_ttl"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" envconfig:"METRICS_ENABLED"`
	Path    string `yaml:"path" json:"path"`
}
