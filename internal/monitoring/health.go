// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/valpere/AttendScrapexter/internal/browser"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// CheckFunc returns nil when the component is healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Status   HealthStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
	Duration string       `json:"duration"`
}

// HealthReport is the /health payload. Status stays "ok" while the process
// serves requests; browser_ready tells whether scrapes can succeed.
type HealthReport struct {
	Status       string                 `json:"status"`
	BrowserReady bool                   `json:"browser_ready"`
	Version      string                 `json:"version,omitempty"`
	Uptime       string                 `json:"uptime"`
	Pool         *browser.PoolStats     `json:"pool,omitempty"`
	Checks       map[string]CheckResult `json:"checks,omitempty"`
	System       SystemMetrics          `json:"system"`
}

// SystemMetrics provides system-level metrics
type SystemMetrics struct {
	GoroutineCount int    `json:"goroutine_count"`
	AllocatedBytes uint64 `json:"allocated_bytes"`
	NumGC          uint32 `json:"num_gc"`
}

// PoolSource is anything that can report browser pool stats.
type PoolSource interface {
	Stats() browser.PoolStats
}

// HealthConfig configuration for health reporting
type HealthConfig struct {
	Version      string
	CheckTimeout time.Duration
	Pool         PoolSource
}

// HealthReporter runs registered checks on demand and builds reports.
type HealthReporter struct {
	config  HealthConfig
	started time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewHealthReporter creates a reporter
func NewHealthReporter(config HealthConfig) *HealthReporter {
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 2 * time.Second
	}
	return &HealthReporter{
		config:  config,
		started: time.Now(),
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds or replaces a named check.
func (hr *HealthReporter) RegisterCheck(name string, fn CheckFunc) {
	hr.mu.Lock()
	defer hr.mu.Unlock()
	hr.checks[name] = fn
}

// Report runs every check and returns the current health.
func (hr *HealthReporter) Report(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:  "ok",
		Version: hr.config.Version,
		Uptime:  time.Since(hr.started).Round(time.Second).String(),
		System:  systemMetrics(),
	}

	if hr.config.Pool != nil {
		stats := hr.config.Pool.Stats()
		report.BrowserReady = stats.Ready
		report.Pool = &stats
	}

	hr.mu.RLock()
	names := make([]string, 0, len(hr.checks))
	for name := range hr.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(hr.checks))
	for k, v := range hr.checks {
		checks[k] = v
	}
	hr.mu.RUnlock()
	sort.Strings(names)

	if len(names) > 0 {
		report.Checks = make(map[string]CheckResult, len(names))
	}
	for _, name := range names {
		result := hr.runCheck(ctx, checks[name])
		if result.Status != HealthStatusHealthy {
			report.Status = "degraded"
		}
		report.Checks[name] = result
	}
	return report
}

func (hr *HealthReporter) runCheck(ctx context.Context, fn CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, hr.config.CheckTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	result := CheckResult{
		Status:   HealthStatusHealthy,
		Duration: time.Since(start).String(),
	}
	if err != nil {
		result.Status = HealthStatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// HealthHandler serves the report as JSON. HEAD gets headers only.
func (hr *HealthReporter) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := hr.Report(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}

// GoroutineHealthCheck fails when the goroutine count exceeds max.
func GoroutineHealthCheck(max int) CheckFunc {
	return func(ctx context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return fmt.Errorf("goroutine count %d exceeds %d", n, max)
		}
		return nil
	}
}

// ContextLeakHealthCheck fails when more browsing contexts are open than
// scrapes are running, which means one was not closed. A scrape finishing
// between the two counters being read is ruled out by sampling twice.
func ContextLeakHealthCheck(pool PoolSource) CheckFunc {
	return func(ctx context.Context) error {
		s := pool.Stats()
		if s.OpenContexts <= s.InUse {
			return nil
		}
		s = pool.Stats()
		if s.OpenContexts > s.InUse {
			return fmt.Errorf("%d browsing contexts open with %d scrapes running", s.OpenContexts, s.InUse)
		}
		return nil
	}
}

func systemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemMetrics{
		GoroutineCount: runtime.NumGoroutine(),
		AllocatedBytes: m.Alloc,
		NumGC:          m.NumGC,
	}
}
