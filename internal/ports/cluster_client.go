package ports

import (
	"context"

	"github.com/bft-labs/livemount/internal/domain"
)

// Session is an authenticated handle to the cluster API.
// It is acquired once per run and passed to every call.
type Session interface {
	// Address returns the cluster address the session is bound to.
	Address() string
}

// ClusterClient is the cluster API capability the orchestrator drives.
// Lookups return an error wrapping domain.ErrNotFound when nothing matches.
type ClusterClient interface {
	// Connect authenticates against the cluster.
	Connect(ctx context.Context) (Session, error)

	// ClusterInfo returns identity, version and timezone of the cluster.
	ClusterInfo(ctx context.Context, s Session) (domain.ClusterInfo, error)

	// DatabaseID resolves a database by name and the host (or RAC) it runs on.
	DatabaseID(ctx context.Context, s Session, database, host string) (string, error)

	// DatabaseInfo fetches the current metadata of a database.
	DatabaseInfo(ctx context.Context, s Session, databaseID string) (domain.DatabaseInfo, error)

	// HostID resolves a standalone host registered with the given cluster.
	HostID(ctx context.Context, s Session, clusterID, host string) (string, error)

	// RACID resolves a RAC cluster registered with the given cluster.
	RACID(ctx context.Context, s Session, clusterID, racName string) (string, error)

	// LiveMount issues the live mount. It is the only mutating call.
	LiveMount(ctx context.Context, s Session, req domain.MountRequest) (domain.LiveMountResult, error)
}
