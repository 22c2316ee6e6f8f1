// pkg/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retry int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL + "/", RetryCount: retry})
	require.NoError(t, err)
	return client
}

func TestClient_ScrapeAttendance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape-attendance", r.URL.Path)

		var req ScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "21691A0501", req.Username)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"student_name":"Asha Rao","roll_number":"21691A0501","overall_percentage":76.67,
			"courses":[{"name":"Maths","attended":5,"conducted":10,"percentage":50}]}`))
	}, 0)

	res, err := client.ScrapeAttendance(context.Background(), "21691A0501", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", res.StudentName)
	assert.Equal(t, 76.67, res.OverallPercentage)
	require.Len(t, res.Courses, 1)
	assert.Equal(t, 10, res.Courses[0].Conducted)
}

func TestClient_ScrapeAttendance_LoginFailed(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(RequestIDHeader, "req-1")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Login failed or could not fetch data"}`))
	}, 3)

	_, err := client.ScrapeAttendance(context.Background(), "u", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Login failed or could not fetch data", apiErr.Detail)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "scrapes are not retried")
}

func TestClient_ScrapeAttendance_RequiresCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, 0)

	_, err := client.ScrapeAttendance(context.Background(), "", "x")
	assert.Error(t, err)
	_, err = client.ScrapeAttendance(context.Background(), "u", "")
	assert.Error(t, err)
}

func TestClient_HealthRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","browser_ready":true,"pool":{"capacity":3}}`))
	}, 2)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.BrowserReady)
	require.NotNil(t, health.Pool)
	assert.Equal(t, 3, health.Pool.Capacity)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_HealthGivesUpAfterRetryCount(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 2)

	_, err := client.Health(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ScrapeAttendance_ServerErrorNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"Browser not ready"}`))
	}, 3)

	_, err := client.ScrapeAttendance(context.Background(), "21691A0501", "secret")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "scrapes are not retried")
}

func TestClient_BunkCalculator(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in BunkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, 75.0, in.DesiredPercent)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_percentage":90,"max_bunk":17,"message":"ok"}`))
	}, 0)

	res, err := client.BunkCalculator(context.Background(), BunkRequest{
		TotalClasses: 100, AttendedClasses: 90, DesiredPercent: 75, ClassesPerWeek: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 17, res.MaxBunk)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)
}
