// cmd/attendscrape/main_test.go
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

const attendanceJSON = `{"student_name":"Asha Rao","roll_number":"21691A0501","overall_percentage":76.67,
	"courses":[{"name":"Maths","attended":5,"conducted":10,"percentage":50},
	{"name":"Physics","attended":18,"conducted":20,"percentage":90}]}`

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "attendscrape dev")
}

func TestBunk(t *testing.T) {
	out, _, err := execute(t, "bunk", "--total", "100", "--attended", "90", "--desired", "75", "--per-week", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Current attendance: 90.00%")
	assert.Contains(t, out, "bunk 17")

	out, _, err = execute(t, "bunk", "--total", "100", "--attended", "60", "--per-week", "10", "--json")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, -13.0, res["max_bunk"])
}

func TestBunk_Invalid(t *testing.T) {
	_, _, err := execute(t, "bunk", "--total", "10", "--attended", "20", "--per-week", "5")
	assert.Error(t, err)

	_, _, err = execute(t, "bunk", "--total", "10")
	assert.Error(t, err, "required flags")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("browser:\n  max_concurrent: 2\n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("browser:\n  max_concurrent: 0\n"), 0644))

	out, _, err := execute(t, "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, stderr, err := execute(t, "config", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, stderr, "browser.max_concurrent")
}

func TestConfigShow_AppliesEnvironment(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_SCRAPES", "6")

	out, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_concurrent: 6")
	assert.Contains(t, out, "portal_url: http://mitsims.in/")
}

func TestScrape_RemoteCSV(t *testing.T) {
	ts := fakeServer(t, http.StatusOK, attendanceJSON)

	out, _, err := execute(t, "scrape", "-u", "21691A0501", "-p", "pw", "--server", ts.URL, "--format", "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"OVERALL", "23", "30", "76.67"}, rows[3])
}

func TestScrape_RemoteToFile(t *testing.T) {
	ts := fakeServer(t, http.StatusOK, attendanceJSON)
	path := filepath.Join(t.TempDir(), "attendance.xlsx")
	t.Setenv(passwordEnv, "from-env")

	_, stderr, err := execute(t, "scrape", "-u", "21691A0501", "--server", ts.URL, "--out", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 courses")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestScrape_RemoteLoginFailed(t *testing.T) {
	ts := fakeServer(t, http.StatusBadRequest, `{"detail":"Login failed or could not fetch data"}`)

	_, _, err := execute(t, "scrape", "-u", "u", "-p", "wrong", "--server", ts.URL)
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.code)
}

func TestScrape_ArgumentErrors(t *testing.T) {
	t.Setenv(passwordEnv, "")

	_, _, err := execute(t, "scrape", "-u", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), passwordEnv)

	_, _, err = execute(t, "scrape", "-u", "u", "-p", "x", "--format", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")

	_, _, err = execute(t, "scrape", "-u", "u", "-p", "x", "--format", "pdf")
	assert.Error(t, err)

	_, _, err = execute(t, "scrape", "-p", "x")
	assert.Error(t, err, "username is required")
}
