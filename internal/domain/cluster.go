package domain

import (
	"fmt"
	"time"
	// Cluster timezones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

// ClusterInfo identifies the cluster serving the request.
// Timezone governs how every point in time is interpreted and displayed.
type ClusterInfo struct {
	ID       string
	Name     string
	Version  string
	Timezone string
}

// Location loads the cluster's IANA timezone.
func (c ClusterInfo) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, fmt.Errorf("cluster %q reports no timezone", c.Name)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load cluster timezone: %w", err)
	}
	return loc, nil
}
