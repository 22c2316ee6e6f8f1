// internal/config/validation.go - Validation with detailed error messages
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func (r *ValidationResult) addError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

// Validate returns an error listing every problem found.
func (c *Config) Validate() error {
	result := c.ValidateWithDetails()
	if !result.Valid {
		return formatValidationError(result)
	}
	return nil
}

// ValidateWithDetails provides detailed validation results
func (c *Config) ValidateWithDetails() *ValidationResult {
	result := &ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]string, 0),
	}

	c.validateServer(result)
	c.validateBrowser(result)
	c.validateScraper(result)
	c.validateLog(result)
	c.validateRateLimit(result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (c *Config) validateServer(result *ValidationResult) {
	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		result.addError("server.port", strconv.Itoa(s.Port), "Port must be between 1 and 65535")
	}
	if s.RequestTimeout <= 0 {
		result.addError("server.request_timeout", s.RequestTimeout.String(), "Request timeout must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		result.addError("server.shutdown_timeout", s.ShutdownTimeout.String(), "Shutdown timeout must be positive")
	}
	if len(s.CORSOrigins) == 0 {
		result.Warnings = append(result.Warnings, "No CORS origins configured, browsers on other origins will be refused")
	}
}

func (c *Config) validateBrowser(result *ValidationResult) {
	b := c.Browser
	if b.MaxConcurrent < 1 {
		result.addError("browser.max_concurrent", strconv.Itoa(b.MaxConcurrent), "At least one concurrent scrape is required")
	}
	if b.MaxConcurrent > 32 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("max_concurrent=%d, each scrape holds a browser context in memory", b.MaxConcurrent))
	}
	if b.ViewportWidth <= 0 || b.ViewportHeight <= 0 {
		result.addError("browser.viewport", fmt.Sprintf("%dx%d", b.ViewportWidth, b.ViewportHeight), "Viewport dimensions must be positive")
	}
	for _, r := range b.BlockResources {
		switch strings.ToLower(r) {
		case "image", "media", "font", "stylesheet":
		default:
			result.addError("browser.block_resources", r, "Unsupported resource type (use image, media, font or stylesheet)")
		}
	}
}

func (c *Config) validateScraper(result *ValidationResult) {
	s := c.Scraper
	u, err := url.Parse(s.PortalURL)
	if s.PortalURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.addError("scraper.portal_url", s.PortalURL, "Portal URL must be an absolute http(s) URL")
	}

	timeouts := []struct {
		field string
		value time.Duration
	}{
		{"scraper.action_timeout", s.ActionTimeout},
		{"scraper.form_timeout", s.FormTimeout},
		{"scraper.login_timeout", s.LoginTimeout},
		{"scraper.data_timeout", s.DataTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			result.addError(t.field, t.value.String(), "Timeout must be positive")
		}
	}
	if s.SettleDelay < 0 {
		result.addError("scraper.settle_delay", s.SettleDelay.String(), "Settle delay cannot be negative")
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result.addError("log.level", c.Log.Level, "Log level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		result.addError("log.format", c.Log.Format, "Log format must be console or json")
	}
}

func (c *Config) validateRateLimit(result *ValidationResult) {
	if !c.RateLimit.Enabled {
		return
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		result.addError("rate_limit.requests_per_second", strconv.FormatFloat(c.RateLimit.RequestsPerSecond, 'f', -1, 64), "Rate must be positive when rate limiting is enabled")
	}
	if c.RateLimit.Burst < 1 {
		result.addError("rate_limit.burst", strconv.Itoa(c.RateLimit.Burst), "Burst must be at least 1")
	}
}

// formatValidationError creates a comprehensive error message
func formatValidationError(result *ValidationResult) error {
	var errorMsg strings.Builder

	errorMsg.WriteString("configuration validation failed:\n")
	for i, err := range result.Errors {
		errorMsg.WriteString(fmt.Sprintf("  %d. %s", i+1, err.Message))
		if err.Field != "" {
			errorMsg.WriteString(fmt.Sprintf(" (field: %s)", err.Field))
		}
		if err.Value != "" {
			errorMsg.WriteString(fmt.Sprintf(" (value: %s)", err.Value))
		}
		errorMsg.WriteString("\n")
	}

	return fmt.Errorf("%s", strings.TrimRight(errorMsg.String(), "\n"))
}
