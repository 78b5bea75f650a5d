package rubrik

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bft-labs/livemount/internal/domain"
	"github.com/bft-labs/livemount/internal/ports"
)

type oracleDB struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	StandaloneHostName  string `json:"standaloneHostName"`
	RACName             string `json:"racName"`
	LatestRecoveryPoint string `json:"latestRecoveryPoint"`
	Instances           []struct {
		HostName string `json:"hostName"`
	} `json:"instances"`
}

type oracleDBList struct {
	Total int        `json:"total"`
	Data  []oracleDB `json:"data"`
}

// registration is the shape shared by oracle hosts and RAC clusters.
type registration struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PrimaryClusterID string `json:"primaryClusterId"`
}

type registrationList struct {
	Total int            `json:"total"`
	Data  []registration `json:"data"`
}

type mountPayload struct {
	RecoveryPoint struct {
		TimestampMs int64 `json:"timestampMs"`
	} `json:"recoveryPoint"`
	TargetOracleHostOrRacID string `json:"targetOracleHostOrRacId"`
	ShouldMountFilesOnly    bool   `json:"shouldMountFilesOnly"`
}

// DatabaseID finds the database named database on host. Host names are
// compared without their domain. For RAC databases host may be the RAC
// name or the host name of any instance. The first match wins.
func (c *Client) DatabaseID(ctx context.Context, s ports.Session, database, host string) (string, error) {
	var list oracleDBList
	if err := c.get(ctx, apiInternal+"/oracle/db?"+url.Values{"name": {database}}.Encode(), &list); err != nil {
		return "", fmt.Errorf("list oracle databases: %w", err)
	}

	short := domain.ShortHostName(host)
	for _, db := range list.Data {
		if db.Name != "" && db.Name != database {
			continue
		}
		if db.StandaloneHostName != "" && domain.ShortHostName(db.StandaloneHostName) == short {
			return db.ID, nil
		}
		if db.RACName == "" {
			continue
		}
		if db.RACName == host {
			return db.ID, nil
		}
		for _, inst := range db.Instances {
			if domain.ShortHostName(inst.HostName) == short {
				return db.ID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: database %s on host %s", domain.ErrNotFound, database, host)
}

// DatabaseInfo fetches the current metadata of a database.
func (c *Client) DatabaseInfo(ctx context.Context, s ports.Session, databaseID string) (domain.DatabaseInfo, error) {
	var db oracleDB
	if err := c.get(ctx, apiInternal+"/oracle/db/"+url.PathEscape(databaseID), &db); err != nil {
		return domain.DatabaseInfo{}, fmt.Errorf("get oracle database %s: %w", databaseID, err)
	}
	return domain.DatabaseInfo{
		ID:                  db.ID,
		Name:                db.Name,
		RACName:             db.RACName,
		LatestRecoveryPoint: db.LatestRecoveryPoint,
	}, nil
}

// HostID resolves a standalone oracle host registered with clusterID.
func (c *Client) HostID(ctx context.Context, s ports.Session, clusterID, host string) (string, error) {
	id, err := c.lookupRegistration(ctx, "/oracle/host", clusterID, host, true)
	if err != nil {
		return "", fmt.Errorf("resolve host %s: %w", host, err)
	}
	return id, nil
}

// RACID resolves a RAC cluster registered with clusterID.
func (c *Client) RACID(ctx context.Context, s ports.Session, clusterID, racName string) (string, error) {
	id, err := c.lookupRegistration(ctx, "/oracle/rac", clusterID, racName, false)
	if err != nil {
		return "", fmt.Errorf("resolve rac %s: %w", racName, err)
	}
	return id, nil
}

func (c *Client) lookupRegistration(ctx context.Context, path, clusterID, name string, shortNames bool) (string, error) {
	var list registrationList
	if err := c.get(ctx, apiInternal+path+"?"+url.Values{"name": {name}}.Encode(), &list); err != nil {
		return "", err
	}
	for _, r := range list.Data {
		if clusterID != "" && r.PrimaryClusterID != "" && r.PrimaryClusterID != clusterID {
			continue
		}
		if r.Name == name || (shortNames && domain.ShortHostName(r.Name) == domain.ShortHostName(name)) {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s on cluster %s", domain.ErrNotFound, name, clusterID)
}

// LiveMount asks the cluster to mount the database at the given point in time.
func (c *Client) LiveMount(ctx context.Context, s ports.Session, req domain.MountRequest) (domain.LiveMountResult, error) {
	var payload mountPayload
	payload.RecoveryPoint.TimestampMs = req.TimestampMs
	payload.TargetOracleHostOrRacID = req.HostID

	var raw map[string]any
	path := apiInternal + "/oracle/db/" + url.PathEscape(req.DatabaseID) + "/mount"
	if err := c.post(ctx, path, payload, &raw); err != nil {
		return domain.LiveMountResult{}, fmt.Errorf("live mount: %w", err)
	}

	return domain.LiveMountResult{
		ID:        stringField(raw, "id"),
		Status:    stringField(raw, "status"),
		StartTime: stringField(raw, "startTime"),
		Raw:       raw,
	}, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
