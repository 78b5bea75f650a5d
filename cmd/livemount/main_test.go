package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/livemount/internal/domain"
)

// newFakeCluster serves a standalone ORCL database on node1 and host node2.
func newFakeCluster(t *testing.T) (*httptest.Server, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	var calls, mounts atomic.Int32
	routes := map[string]any{
		"GET /api/v1/cluster/me": map[string]any{
			"id": "cluster-1", "name": "cdm01", "version": "5.0.2",
			"timezone": map[string]any{"timezone": "America/Chicago"},
		},
		"GET /api/internal/oracle/db": map[string]any{
			"total": 1,
			"data":  []any{map[string]any{"id": "OracleDatabase:::1", "name": "ORCL", "standaloneHostName": "node1.example.com"}},
		},
		"GET /api/internal/oracle/db/OracleDatabase:::1": map[string]any{
			"id": "OracleDatabase:::1", "name": "ORCL", "latestRecoveryPoint": "2019-01-02T02:30:15.000Z",
		},
		"GET /api/internal/oracle/host": map[string]any{
			"total": 1,
			"data":  []any{map[string]any{"id": "OracleHost:::2", "name": "node2.example.com", "primaryClusterId": "cluster-1"}},
		},
		"POST /api/internal/oracle/db/OracleDatabase:::1/mount": map[string]any{
			"id": "MOUNT_ORACLE_SNAPSHOT_1", "status": "QUEUED", "startTime": "2019-05-01T15:04:05.000Z",
		},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method == http.MethodPost {
			mounts.Add(1)
		}
		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls, &mounts
}

// isolateEnv keeps the developer's config, dotenv and credentials out of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"LIVEMOUNT_NODE_IP", "LIVEMOUNT_USERNAME", "LIVEMOUNT_PASSWORD", "LIVEMOUNT_API_TOKEN",
		"LIVEMOUNT_FORMAT", "LIVEMOUNT_OUTPUT_FILE", "LIVEMOUNT_LOG_LEVEL", "LIVEMOUNT_HTTP_TIMEOUT", "LIVEMOUNT_INSECURE",
		"rubrik_cdm_node_ip", "rubrik_cdm_username", "rubrik_cdm_password", "rubrik_cdm_token",
	} {
		t.Setenv(name, "")
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	log := zerolog.Nop()
	root := newRootCmd(&stdout, &stderr, &log)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_LiveMountLatestRecoveryPoint(t *testing.T) {
	isolateEnv(t)
	ts, _, mounts := newFakeCluster(t)
	t.Setenv("LIVEMOUNT_NODE_IP", ts.URL)
	t.Setenv("rubrik_cdm_username", "admin")
	t.Setenv("rubrik_cdm_password", "secret")

	out, _, err := execute(t, "node1:ORCL", "node2", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, int32(1), mounts.Load())

	assert.Contains(t, out, "Connected to cluster: cdm01, version: 5.0.2, Timezone: America/Chicago.\n")
	assert.Contains(t, out, "Using most recent recovery point for mount.\n")
	assert.Contains(t, out, "Starting Live Mount of ORCL on node2.\n")
	assert.Contains(t, out, "Live mount status: QUEUED, Started at 2019-05-01 10:04:05 CDT.\n")

	payload := out[strings.Index(out, "{"):]
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	assert.Equal(t, "MOUNT_ORACLE_SNAPSHOT_1", got["id"])
}

func TestRootCmd_ConfigFileAndOutputFile(t *testing.T) {
	isolateEnv(t)
	ts, _, _ := newFakeCluster(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	outPath := filepath.Join(dir, "result.yaml")
	content := "node_ip = \"" + ts.URL + "\"\napi_token = \"tok\"\nformat = \"yaml\"\nlog_level = \"error\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	out, _, err := execute(t, "node1:ORCL", "node2", "-t", "2019-01-01T20:30:15", "--config", cfgPath, "--output-file", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Using 2019-01-01T20:30:15 for mount.\n")
	assert.Contains(t, out, "status: QUEUED\n")

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "id: MOUNT_ORACLE_SNAPSHOT_1")
}

func TestRootCmd_MalformedLocatorMakesNoCalls(t *testing.T) {
	isolateEnv(t)
	ts, calls, _ := newFakeCluster(t)
	t.Setenv("LIVEMOUNT_NODE_IP", ts.URL)
	t.Setenv("LIVEMOUNT_API_TOKEN", "tok")

	_, stderr, err := execute(t, "hostonly", "node2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidLocator)
	assert.Contains(t, stderr, "Usage:")
	assert.Equal(t, int32(0), calls.Load())
}

func TestRootCmd_InputErrorsWithoutClusterConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "malformed locator", args: []string{"hostonly", "node2"}, want: domain.ErrInvalidLocator},
		{name: "malformed point in time", args: []string{"node1:ORCL", "node2", "-t", "yesterday"}, want: domain.ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)

			_, stderr, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsUsageError(err))
			assert.NotContains(t, err.Error(), "node-ip")
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRootCmd_IPAddressesMakeNoCalls(t *testing.T) {
	isolateEnv(t)
	ts, calls, _ := newFakeCluster(t)
	t.Setenv("LIVEMOUNT_NODE_IP", ts.URL)
	t.Setenv("LIVEMOUNT_API_TOKEN", "tok")

	_, stderr, err := execute(t, "10.0.0.5:ORCL", "node2")
	assert.ErrorIs(t, err, domain.ErrInvalidLocator)
	assert.Contains(t, stderr, "Usage:")

	_, _, err = execute(t, "node1:ORCL", "192.168.1.20")
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	assert.Equal(t, int32(0), calls.Load())
}

func TestRootCmd_LogsCarryRunAndNode(t *testing.T) {
	isolateEnv(t)
	ts, _, _ := newFakeCluster(t)
	t.Setenv("LIVEMOUNT_NODE_IP", ts.URL)
	t.Setenv("LIVEMOUNT_API_TOKEN", "tok")

	_, stderr, err := execute(t, "node1:ORCL", "node2", "--log-level", "info")
	require.NoError(t, err)

	var line string
	for _, l := range strings.Split(stderr, "\n") {
		if strings.Contains(l, "connected") {
			line = l
			break
		}
	}
	require.NotEmpty(t, line, stderr)
	assert.Contains(t, line, "node=")
	assert.Contains(t, line, ts.URL)
	assert.Contains(t, line, "run_id=")
}

func TestRootCmd_UnknownDatabaseDoesNotMount(t *testing.T) {
	isolateEnv(t)
	ts, _, mounts := newFakeCluster(t)
	t.Setenv("LIVEMOUNT_NODE_IP", ts.URL)
	t.Setenv("LIVEMOUNT_API_TOKEN", "tok")

	_, _, err := execute(t, "other:ORCL", "node2", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(0), mounts.Load())
}

func TestRootCmd_RequiresNodeIP(t *testing.T) {
	isolateEnv(t)

	_, _, err := execute(t, "node1:ORCL", "node2", "--api-token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node-ip")
}

func TestRootCmd_RequiresTwoArgs(t *testing.T) {
	isolateEnv(t)

	_, _, err := execute(t, "node1:ORCL")
	assert.Error(t, err)
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	isolateEnv(t)

	_, _, err := execute(t, "node1:ORCL", "node2", "--config", filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
