package domain

import "time"

// UsageLogEntry is one row of the append-only tool invocation audit trail.
type UsageLogEntry struct {
	ID     int64
	UserID int64
	Tool   string
	UsedAt time.Time
}

// AdLogEntry records a single ad impression shown to a user.
type AdLogEntry struct {
	UserID  int64
	ShownAt time.Time
}

// ToolUsage aggregates invocation counts per tool token.
type ToolUsage struct {
	Tool  string
	Count int64
}
