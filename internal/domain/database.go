package domain

// Topology describes how a database instance is deployed.
type Topology int

const (
	// TopologyStandalone is a database running on a single host.
	TopologyStandalone Topology = iota
	// TopologyClustered is a RAC database spanning several hosts.
	TopologyClustered
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case TopologyStandalone:
		return "Standalone"
	case TopologyClustered:
		return "Clustered"
	default:
		return "Unknown"
	}
}

// DatabaseInfo is the metadata the cluster keeps about a protected database.
type DatabaseInfo struct {
	ID   string
	Name string

	// RACName is set when the database runs as a RAC instance.
	RACName string

	// LatestRecoveryPoint is an ISO 8601 UTC timestamp.
	LatestRecoveryPoint string
}

// Topology derives the deployment from the RAC name.
// A clustered database can only be mounted on a RAC cluster.
func (d DatabaseInfo) Topology() Topology {
	if d.RACName != "" {
		return TopologyClustered
	}
	return TopologyStandalone
}
