// internal/monitoring/monitoring_test.go
package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/AttendScrapexter/internal/browser"
)

type staticPool struct{ stats browser.PoolStats }

func (p staticPool) Stats() browser.PoolStats { return p.stats }

// sequencePool returns each sample in turn and then repeats the last one.
type sequencePool struct {
	samples []browser.PoolStats
	calls   int
}

func (p *sequencePool) Stats() browser.PoolStats {
	i := p.calls
	if i >= len(p.samples) {
		i = len(p.samples) - 1
	}
	p.calls++
	return p.samples[i]
}

func TestMetricsManager_ObserveScrape(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{Namespace: "test"})

	mm.ObserveScrape("success", 3*time.Second, 4)
	mm.ObserveScrape("success", 2*time.Second, 2)
	mm.ObserveScrape("auth_failed", 30*time.Second, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(mm.scrapesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.scrapesTotal.WithLabelValues("auth_failed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(mm.coursesExtracted))
}

func TestMetricsManager_StepsAndSkips(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})

	mm.ObserveStep("await_login", time.Second, nil)
	mm.ObserveStep("await_login", time.Second, errors.New("timeout"))
	mm.ObserveTransientTimeout("await_data")
	mm.ObserveSkippedContainer("decoration")
	mm.ObserveSkippedContainer("decoration")

	assert.Equal(t, 2, testutil.CollectAndCount(mm.stepDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.transientTimeouts.WithLabelValues("await_data")))
	assert.Equal(t, 2.0, testutil.ToFloat64(mm.containersSkipped.WithLabelValues("decoration")))
}

func TestMetricsManager_NilIsNoop(t *testing.T) {
	var mm *MetricsManager
	assert.NotPanics(t, func() {
		mm.ObserveScrape("success", time.Second, 1)
		mm.ObserveStep("navigate", time.Second, nil)
		mm.ObserveTransientTimeout("await_data")
		mm.ObserveSkippedContainer("panic")
		mm.ObserveHTTPRequest("/health", "GET", 200, time.Millisecond)
		mm.RecordRateLimitHit("/scrape-attendance")
		mm.RegisterPoolStats(func() browser.PoolStats { return browser.PoolStats{} })
	})
}

func TestMetricsManager_HandlerExposesPoolGauges(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{Namespace: "attendscrape"})
	mm.RegisterPoolStats(func() browser.PoolStats {
		return browser.PoolStats{Ready: true, Capacity: 3, InUse: 2, OpenContexts: 2}
	})
	mm.ObserveHTTPRequest("/health", http.MethodGet, http.StatusOK, time.Millisecond)
	mm.RecordRateLimitHit("/scrape-attendance")

	rec := httptest.NewRecorder()
	mm.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "attendscrape_browser_ready 1")
	assert.Contains(t, body, "attendscrape_browser_permits_in_use 2")
	assert.Contains(t, body, "attendscrape_browser_permits_capacity 3")
	assert.Contains(t, body, `attendscrape_http_requests_total{method="GET",route="/health",status_code="200"} 1`)
	assert.Contains(t, body, `attendscrape_http_rate_limit_hits_total{route="/scrape-attendance"} 1`)
}

func TestMetricsManager_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetricsManager(MetricsConfig{EnableGoMetrics: true})
		NewMetricsManager(MetricsConfig{EnableGoMetrics: true})
	})
}

func TestHealthReporter_Report(t *testing.T) {
	pool := staticPool{browser.PoolStats{Ready: true, Capacity: 3, InUse: 1, OpenContexts: 1}}
	hr := NewHealthReporter(HealthConfig{Version: "1.2.3", Pool: pool})

	report := hr.Report(context.Background())
	assert.Equal(t, "ok", report.Status)
	assert.True(t, report.BrowserReady)
	assert.Equal(t, "1.2.3", report.Version)
	require.NotNil(t, report.Pool)
	assert.Equal(t, 3, report.Pool.Capacity)
	assert.Empty(t, report.Checks)
}

func TestHealthReporter_FailingCheckDegrades(t *testing.T) {
	pool := staticPool{browser.PoolStats{Ready: true, Capacity: 3, InUse: 0, OpenContexts: 2}}
	hr := NewHealthReporter(HealthConfig{Pool: pool})
	hr.RegisterCheck("contexts", ContextLeakHealthCheck(pool))
	hr.RegisterCheck("goroutines", GoroutineHealthCheck(1_000_000))

	report := hr.Report(context.Background())
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, HealthStatusUnhealthy, report.Checks["contexts"].Status)
	assert.Contains(t, report.Checks["contexts"].Error, "2 browsing contexts")
	assert.Equal(t, HealthStatusHealthy, report.Checks["goroutines"].Status)
}

func TestContextLeakHealthCheck_IgnoresScrapeFinishingMidSample(t *testing.T) {
	pool := &sequencePool{samples: []browser.PoolStats{
		{Capacity: 3, InUse: 0, OpenContexts: 1},
		{Capacity: 3, InUse: 0, OpenContexts: 0},
	}}
	check := ContextLeakHealthCheck(pool)

	assert.NoError(t, check(context.Background()))
	assert.Equal(t, 2, pool.calls)

	leaked := &sequencePool{samples: []browser.PoolStats{{Capacity: 3, InUse: 0, OpenContexts: 1}}}
	assert.Error(t, ContextLeakHealthCheck(leaked)(context.Background()))

	healthy := &sequencePool{samples: []browser.PoolStats{{Capacity: 3, InUse: 1, OpenContexts: 1}}}
	assert.NoError(t, ContextLeakHealthCheck(healthy)(context.Background()))
	assert.Equal(t, 1, healthy.calls)
}

func TestHealthReporter_CheckTimeout(t *testing.T) {
	hr := NewHealthReporter(HealthConfig{CheckTimeout: 20 * time.Millisecond})
	hr.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := hr.Report(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, report.Checks["slow"].Status)
	assert.False(t, report.BrowserReady)
}

func TestHealthReporter_Handler(t *testing.T) {
	hr := NewHealthReporter(HealthConfig{Pool: staticPool{browser.PoolStats{Capacity: 3}}})
	handler := hr.HealthHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["browser_ready"])

	head := httptest.NewRecorder()
	handler.ServeHTTP(head, httptest.NewRequest(http.MethodHead, "/health", nil))
	assert.Equal(t, http.StatusOK, head.Code)
	assert.Empty(t, strings.TrimSpace(head.Body.String()))
}
