package domain

import (
	"fmt"
	"net"
	"strings"
)

// SourceLocator names a protected database by the host it runs on.
// For RAC databases Host may be the RAC cluster name or one of its nodes.
type SourceLocator struct {
	Host     string
	Database string
}

// ParseSourceLocator splits a HOST:DATABASE string.
// Exactly one separator is allowed and both parts must be non-empty.
// The host must be a name; the cluster does not register hosts by IP.
func ParseSourceLocator(s string) (SourceLocator, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return SourceLocator{}, fmt.Errorf("%w: %q must be HOST:DATABASE", ErrInvalidLocator, s)
	}
	host := strings.TrimSpace(parts[0])
	db := strings.TrimSpace(parts[1])
	if host == "" || db == "" {
		return SourceLocator{}, fmt.Errorf("%w: %q has an empty host or database", ErrInvalidLocator, s)
	}
	if net.ParseIP(host) != nil {
		return SourceLocator{}, fmt.Errorf("%w: use the host name registered with the cluster, not the IP %s", ErrInvalidLocator, host)
	}
	return SourceLocator{Host: host, Database: db}, nil
}

// ParseTargetHost trims and checks the host or RAC name that receives a mount.
func ParseTargetHost(s string) (string, error) {
	host := strings.TrimSpace(s)
	if host == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: use the host name registered with the cluster, not the IP %s", ErrInvalidTarget, host)
	}
	return host, nil
}

// String returns the HOST:DATABASE form.
func (l SourceLocator) String() string {
	return l.Host + ":" + l.Database
}

// ShortHostName strips the domain from a host name, so "db1.example.com"
// and "db1" compare equal.
func ShortHostName(host string) string {
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}
