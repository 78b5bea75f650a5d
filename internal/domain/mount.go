package domain

// MountRequest holds the resolved identifiers for a live mount.
type MountRequest struct {
	DatabaseID  string
	HostID      string
	TimestampMs int64
}

// LiveMountResult is the cluster's response to a live mount request.
// Raw keeps every field the cluster returned and is what gets emitted.
type LiveMountResult struct {
	ID        string
	Status    string
	StartTime string
	Raw       map[string]any
}

// Payload returns the value to serialize as the program's output.
func (r LiveMountResult) Payload() any {
	if r.Raw != nil {
		return r.Raw
	}
	return map[string]any{
		"id":        r.ID,
		"status":    r.Status,
		"startTime": r.StartTime,
	}
}
