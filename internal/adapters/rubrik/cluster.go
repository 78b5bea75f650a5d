package rubrik

import (
	"context"
	"fmt"

	"github.com/bft-labs/livemount/internal/domain"
	"github.com/bft-labs/livemount/internal/ports"
)

type clusterMe struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Timezone struct {
		Timezone string `json:"timezone"`
	} `json:"timezone"`
}

func (me clusterMe) info() domain.ClusterInfo {
	return domain.ClusterInfo{
		ID:       me.ID,
		Name:     me.Name,
		Version:  me.Version,
		Timezone: me.Timezone.Timezone,
	}
}

// Connect verifies the credentials by reading the cluster identity.
// The identity is kept on the session.
func (c *Client) Connect(ctx context.Context) (ports.Session, error) {
	var me clusterMe
	if err := c.get(ctx, apiV1+"/cluster/me", &me); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.cfg.BaseURL, err)
	}
	return session{address: c.cfg.BaseURL, cluster: me.info()}, nil
}

// ClusterInfo returns the cluster identity and timezone. A session from
// Connect answers without another request.
func (c *Client) ClusterInfo(ctx context.Context, s ports.Session) (domain.ClusterInfo, error) {
	if sess, ok := s.(session); ok && sess.cluster.ID != "" {
		return sess.cluster, nil
	}
	var me clusterMe
	if err := c.get(ctx, apiV1+"/cluster/me", &me); err != nil {
		return domain.ClusterInfo{}, err
	}
	return me.info(), nil
}
