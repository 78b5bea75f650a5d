package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bft-labs/livemount/internal/domain"
	"github.com/bft-labs/livemount/internal/ports"
)

// Request describes a single live mount.
type Request struct {
	// Source is HOST:DATABASE.
	Source string

	// TargetHost is the host or RAC cluster that receives the mount.
	TargetHost string

	// PointInTime is an optional ISO 8601 timestamp. When empty the
	// database's latest recovery point is used.
	PointInTime string
}

// Validate checks the request without contacting the cluster. Every error
// it returns is a usage error.
func (r Request) Validate() error {
	_, _, err := r.parse()
	return err
}

func (r Request) parse() (domain.SourceLocator, string, error) {
	src, err := domain.ParseSourceLocator(r.Source)
	if err != nil {
		return domain.SourceLocator{}, "", err
	}
	target, err := domain.ParseTargetHost(r.TargetHost)
	if err != nil {
		return domain.SourceLocator{}, "", err
	}
	if r.PointInTime != "" {
		// Syntax only; the cluster timezone is applied once it is known.
		if _, err := domain.ParsePointInTime(r.PointInTime, nil); err != nil {
			return domain.SourceLocator{}, "", err
		}
	}
	return src, target, nil
}

// Orchestrator drives the cluster client through the live mount sequence.
type Orchestrator struct {
	client ports.ClusterClient
	logger ports.Logger
	out    io.Writer
}

// NewOrchestrator creates an orchestrator that prints progress to out.
func NewOrchestrator(client ports.ClusterClient, logger ports.Logger, out io.Writer) *Orchestrator {
	if out == nil {
		out = io.Discard
	}
	return &Orchestrator{client: client, logger: logger, out: out}
}

// Run performs the live mount. Input is validated before any cluster call;
// every lookup must succeed before the mount is issued. Nothing is retried.
func (o *Orchestrator) Run(ctx context.Context, req Request) (domain.LiveMountResult, error) {
	src, target, err := req.parse()
	if err != nil {
		return domain.LiveMountResult{}, err
	}

	sess, err := o.client.Connect(ctx)
	if err != nil {
		return domain.LiveMountResult{}, fmt.Errorf("connect: %w", err)
	}

	cluster, err := o.client.ClusterInfo(ctx, sess)
	if err != nil {
		return domain.LiveMountResult{}, fmt.Errorf("get cluster info: %w", err)
	}
	loc, err := cluster.Location()
	if err != nil {
		return domain.LiveMountResult{}, err
	}
	fmt.Fprintf(o.out, "Connected to cluster: %s, version: %s, Timezone: %s.\n", cluster.Name, cluster.Version, cluster.Timezone)
	o.logger.Info("connected",
		ports.String("cluster", cluster.Name),
		ports.String("cluster_id", cluster.ID),
		ports.String("version", cluster.Version),
		ports.String("timezone", cluster.Timezone),
	)

	dbID, err := o.client.DatabaseID(ctx, sess, src.Database, src.Host)
	if err != nil {
		return domain.LiveMountResult{}, fmt.Errorf("resolve database %s: %w", src, err)
	}

	db, err := o.client.DatabaseInfo(ctx, sess, dbID)
	if err != nil {
		return domain.LiveMountResult{}, fmt.Errorf("get database %s: %w", dbID, err)
	}

	hostID, err := o.resolveTarget(ctx, sess, cluster.ID, db.Topology(), target)
	if err != nil {
		return domain.LiveMountResult{}, err
	}
	o.logger.Debug("resolved identifiers",
		ports.String("database_id", dbID),
		ports.String("host_id", hostID),
		ports.Any("topology", db.Topology().String()),
	)

	timestampMs, err := o.mountTimestamp(ctx, sess, dbID, req.PointInTime, loc)
	if err != nil {
		return domain.LiveMountResult{}, err
	}

	fmt.Fprintf(o.out, "Starting Live Mount of %s on %s.\n", src.Database, target)
	o.logger.Info("starting live mount",
		ports.String("database_id", dbID),
		ports.String("host_id", hostID),
		ports.Int64("timestamp_ms", timestampMs),
	)
	result, err := o.client.LiveMount(ctx, sess, domain.MountRequest{
		DatabaseID:  dbID,
		HostID:      hostID,
		TimestampMs: timestampMs,
	})
	if err != nil {
		return domain.LiveMountResult{}, fmt.Errorf("live mount %s on %s: %w", src.Database, target, err)
	}

	o.report(result, loc)
	return result, nil
}

// resolveTarget picks the resolver from the source topology: a RAC database
// must be mounted on a RAC cluster.
func (o *Orchestrator) resolveTarget(ctx context.Context, sess ports.Session, clusterID string, topology domain.Topology, target string) (string, error) {
	switch topology {
	case domain.TopologyClustered:
		id, err := o.client.RACID(ctx, sess, clusterID, target)
		if err != nil {
			return "", fmt.Errorf("resolve target rac %s: %w", target, err)
		}
		return id, nil
	case domain.TopologyStandalone:
		id, err := o.client.HostID(ctx, sess, clusterID, target)
		if err != nil {
			return "", fmt.Errorf("resolve target host %s: %w", target, err)
		}
		return id, nil
	default:
		return "", fmt.Errorf("unknown database topology %s", topology)
	}
}

// mountTimestamp returns the point in time in epoch milliseconds. Without an
// explicit value the database is fetched again so the latest recovery point
// is current.
func (o *Orchestrator) mountTimestamp(ctx context.Context, sess ports.Session, dbID, pointInTime string, loc *time.Location) (int64, error) {
	if pointInTime != "" {
		ms, err := domain.ToEpochMillis(pointInTime, loc)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(o.out, "Using %s for mount.\n", pointInTime)
		return ms, nil
	}

	fmt.Fprintln(o.out, "Using most recent recovery point for mount.")
	db, err := o.client.DatabaseInfo(ctx, sess, dbID)
	if err != nil {
		return 0, fmt.Errorf("refresh database %s: %w", dbID, err)
	}
	if db.LatestRecoveryPoint == "" {
		return 0, fmt.Errorf("database %s has no recovery point: %w", dbID, domain.ErrNotFound)
	}
	ms, err := domain.ToEpochMillis(db.LatestRecoveryPoint, loc)
	if err != nil {
		return 0, fmt.Errorf("latest recovery point of %s: %w", dbID, err)
	}
	return ms, nil
}

// report prints the status with the start time in the cluster timezone.
// A start time that cannot be parsed is printed as received.
func (o *Orchestrator) report(result domain.LiveMountResult, loc *time.Location) {
	started := result.StartTime
	if t, err := domain.LocalizeUTC(result.StartTime, loc); err == nil {
		started = t.Format(domain.DisplayLayout)
	} else {
		o.logger.Warn("could not localize start time", ports.String("start_time", result.StartTime), ports.Err(err))
	}
	fmt.Fprintf(o.out, "Live mount status: %s, Started at %s.\n", result.Status, started)
}
