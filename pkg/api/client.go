// pkg/api/client.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RequestIDHeader carries the server-assigned request ID.
const RequestIDHeader = "X-Request-ID"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// RetryCount applies to health checks only. Scrapes hold a browser slot
	// on the server and are never retried.
	RetryCount int
}

// Client talks to an attendscrape server.
type Client struct {
	resty *resty.Client
}

// NewClient creates a client for the server at config.BaseURL.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if config.Timeout == 0 {
		// Longer than the server's own request timeout.
		config.Timeout = 150 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "attendscrape-client/1.0"
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(retryable)

	return &Client{resty: rc}, nil
}

// ScrapeAttendance asks the server to log in and fetch attendance.
func (c *Client) ScrapeAttendance(ctx context.Context, username, password string) (*AttendanceResponse, error) {
	req := ScrapeRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out AttendanceResponse
	if err := c.post(ctx, "/scrape-attendance", req, &out); err != nil {
		return nil, err
	}
	if out.Courses == nil {
		out.Courses = []CourseRecord{}
	}
	return &out, nil
}

// BunkCalculator runs the bunk calculation server-side.
func (c *Client) BunkCalculator(ctx context.Context, in BunkRequest) (*BunkResponse, error) {
	var out BunkResponse
	if err := c.post(ctx, "/bunk-calculator", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	var apiErr ErrorResponse

	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/health")
	if err := toError(resp, err, &apiErr); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	var apiErr ErrorResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(result).
		SetError(&apiErr).
		Post(path)
	return toError(resp, err, &apiErr)
}

// retryable limits retries to GET requests that hit a server or network
// error, so a scrape POST is sent exactly once.
func retryable(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return resp.StatusCode() >= http.StatusInternalServerError
}

func toError(resp *resty.Response, err error, apiErr *ErrorResponse) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	e := &APIError{
		StatusCode: resp.StatusCode(),
		Detail:     apiErr.Detail,
		RequestID:  apiErr.RequestID,
	}
	if e.RequestID == "" {
		e.RequestID = resp.Header().Get(RequestIDHeader)
	}
	if e.Detail == "" {
		e.Detail = strings.TrimSpace(resp.String())
	}
	return e
}
