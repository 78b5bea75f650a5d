package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/livemount/internal/domain"
	"github.com/bft-labs/livemount/internal/ports"
)

type fakeSession struct{}

func (fakeSession) Address() string { return "https://cdm.test" }

// fakeClusterClient implements ports.ClusterClient and records every call.
type fakeClusterClient struct {
	cluster domain.ClusterInfo
	dbIDs   map[string]string // "host:db" -> id

	// infos is returned by successive DatabaseInfo calls; the last entry repeats.
	infos []domain.DatabaseInfo

	hosts map[string]string
	racs  map[string]string

	connectErr error
	mountErr   error
	mountResp  domain.LiveMountResult

	calls      []string
	infoCalls  int
	mountCalls []domain.MountRequest
}

func newFakeClusterClient() *fakeClusterClient {
	return &fakeClusterClient{
		cluster: domain.ClusterInfo{ID: "cluster-1", Name: "cdm01", Version: "5.0.2", Timezone: "America/Chicago"},
		dbIDs:   map[string]string{},
		hosts:   map[string]string{},
		racs:    map[string]string{},
		mountResp: domain.LiveMountResult{
			ID:        "MOUNT_1",
			Status:    "QUEUED",
			StartTime: "2019-05-01T15:04:05.000Z",
			Raw: map[string]any{
				"id":        "MOUNT_1",
				"status":    "QUEUED",
				"startTime": "2019-05-01T15:04:05.000Z",
			},
		},
	}
}

func (f *fakeClusterClient) Connect(ctx context.Context) (ports.Session, error) {
	f.calls = append(f.calls, "Connect")
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return fakeSession{}, nil
}

func (f *fakeClusterClient) ClusterInfo(ctx context.Context, s ports.Session) (domain.ClusterInfo, error) {
	f.calls = append(f.calls, "ClusterInfo")
	return f.cluster, nil
}

func (f *fakeClusterClient) DatabaseID(ctx context.Context, s ports.Session, database, host string) (string, error) {
	f.calls = append(f.calls, "DatabaseID")
	id, ok := f.dbIDs[host+":"+database]
	if !ok {
		return "", fmt.Errorf("%w: database %s on host %s", domain.ErrNotFound, database, host)
	}
	return id, nil
}

func (f *fakeClusterClient) DatabaseInfo(ctx context.Context, s ports.Session, databaseID string) (domain.DatabaseInfo, error) {
	f.calls = append(f.calls, "DatabaseInfo")
	if len(f.infos) == 0 {
		return domain.DatabaseInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, databaseID)
	}
	i := f.infoCalls
	if i >= len(f.infos) {
		i = len(f.infos) - 1
	}
	f.infoCalls++
	return f.infos[i], nil
}

func (f *fakeClusterClient) HostID(ctx context.Context, s ports.Session, clusterID, host string) (string, error) {
	f.calls = append(f.calls, "HostID")
	id, ok := f.hosts[host]
	if !ok {
		return "", fmt.Errorf("%w: host %s", domain.ErrNotFound, host)
	}
	return id, nil
}

func (f *fakeClusterClient) RACID(ctx context.Context, s ports.Session, clusterID, racName string) (string, error) {
	f.calls = append(f.calls, "RACID")
	id, ok := f.racs[racName]
	if !ok {
		return "", fmt.Errorf("%w: rac %s", domain.ErrNotFound, racName)
	}
	return id, nil
}

func (f *fakeClusterClient) LiveMount(ctx context.Context, s ports.Session, req domain.MountRequest) (domain.LiveMountResult, error) {
	f.calls = append(f.calls, "LiveMount")
	f.mountCalls = append(f.mountCalls, req)
	if f.mountErr != nil {
		return domain.LiveMountResult{}, f.mountErr
	}
	return f.mountResp, nil
}

// mockLogger implements ports.Logger and keeps warnings.
type mockLogger struct {
	warnings []string
}

func (*mockLogger) Debug(msg string, fields ...ports.Field) {}
func (*mockLogger) Info(msg string, fields ...ports.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...ports.Field) {
	m.warnings = append(m.warnings, msg)
}
func (*mockLogger) Error(msg string, fields ...ports.Field) {}
