// pkg/api/types.go
package api

import (
	"fmt"

	"github.com/valpere/AttendScrapexter/internal/attendance"
	"github.com/valpere/AttendScrapexter/internal/browser"
)

// Re-export types from internal packages for public API
type CourseRecord = attendance.CourseRecord
type AttendanceResponse = attendance.AttendanceResult
type BunkRequest = attendance.BunkInput
type BunkResponse = attendance.BunkResult
type PoolStats = browser.PoolStats

// ScrapeRequest is the body of POST /scrape-attendance.
type ScrapeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports missing fields.
func (r ScrapeRequest) Validate() error {
	switch {
	case r.Username == "":
		return fmt.Errorf("username is required")
	case r.Password == "":
		return fmt.Errorf("password is required")
	}
	return nil
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string     `json:"status"`
	BrowserReady bool       `json:"browser_ready"`
	Version      string     `json:"version,omitempty"`
	Uptime       string     `json:"uptime,omitempty"`
	Pool         *PoolStats `json:"pool,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}
