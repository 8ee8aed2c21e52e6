package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

const processesJSON = `[
	{"pid": 30, "name": "zsh", "status": "sleeping", "memory_percent": 0.5},
	{"pid": 10, "name": "Apache", "status": "running", "memory_percent": null},
	{"pid": 20, "name": "cron", "status": "stopped", "memory_percent": 3}
]`

// fakeDirectory serves a fixed process table and records action paths
func fakeDirectory(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var actions []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "cli-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid authentication token"}`))
			return
		}

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/processes":
			_, _ = w.Write([]byte(processesJSON))
		case r.Method == http.MethodPost && r.URL.Path == "/processes/42/suspend":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Process with PID 42 not found"}`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/processes/"):
			actions = append(actions, r.URL.Path)
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &actions
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("API_KEY", "cli-key")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	setupEnv(t)
	srv, _ := fakeDirectory(t)

	out, err := run(t, "list", "--url", srv.URL, "--sort", "memory", "--desc", "--json")
	require.NoError(t, err)

	var rows []process.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, []int32{20, 30, 10}, []int32{rows[0].PID, rows[1].PID, rows[2].PID})
	assert.Nil(t, rows[2].MemoryPercent)
}

func TestListTable(t *testing.T) {
	setupEnv(t)
	srv, _ := fakeDirectory(t)

	out, err := run(t, "list", "--url", srv.URL, "--sort", "name")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME ↑")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "3.00")
	assert.Contains(t, out, "3 processes")
	assert.Less(t, strings.Index(out, "Apache"), strings.Index(out, "cron"))
	assert.Less(t, strings.Index(out, "cron"), strings.Index(out, "zsh"))
}

func TestListInvalidSortKey(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "list", "--sort", "cpu")
	assert.Error(t, err)
}

func TestListUnauthorized(t *testing.T) {
	setupEnv(t)
	t.Setenv("API_KEY", "wrong")
	srv, _ := fakeDirectory(t)

	_, err := run(t, "list", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestAction(t *testing.T) {
	setupEnv(t)
	srv, actions := fakeDirectory(t)

	out, err := run(t, "action", "kill", "77", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "terminate sent to PID 77\n", out)

	_, err = run(t, "action", "resume", "77", "--url", srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []string{"/processes/77/kill", "/processes/77/resume"}, *actions)
}

func TestActionNotFound(t *testing.T) {
	setupEnv(t)
	srv, _ := fakeDirectory(t)

	_, err := run(t, "action", "suspend", "42", "--url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, "suspend process 42 failed (HTTP 404): Process with PID 42 not found", err.Error())
}

func TestActionInvalidArgs(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "action", "explode", "1")
	assert.Error(t, err)

	_, err = run(t, "action", "terminate", "zero")
	assert.EqualError(t, err, `invalid pid "zero"`)

	_, err = run(t, "action", "terminate")
	assert.Error(t, err)
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 64)
}

func TestKeygenSave(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=9000\n"), 0600))
	t.Setenv("ENV_FILE", envFile)

	out, err := run(t, "keygen", "--save", "--env-file", envFile)
	require.NoError(t, err)
	assert.Equal(t, "API key saved to "+envFile+"\n", out)

	values, err := godotenv.Read(envFile)
	require.NoError(t, err)
	assert.Len(t, values["API_KEY"], 64)
	assert.Equal(t, "9000", values["PORT"])
}
