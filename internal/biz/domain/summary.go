package domain

import "time"

// Timeframe sentinels for Summary.TimeframeHours. Positive values are a
// rolling window in hours.
const (
	TimeframeUnread = -1
	TimeframeThread = 0
)

// Workspace is a platform workspace record.
type Workspace struct {
	ID          int64
	WorkspaceID string
	Name        string
	CreatedAt   time.Time
}

// Channel is a platform channel attached to a workspace.
type Channel struct {
	ID          int64
	WorkspaceID int64 // Workspace.ID foreign key
	ChannelID   string
	Name        string
	IsPrivate   bool
	CreatedAt   time.Time
}

// Summary is a delivered summary, persisted for history and diagnostics.
type Summary struct {
	ID             int64
	ChannelRef     int64 // Channel.ID foreign key
	SummaryText    string
	MessageCount   int
	Timeframe      string // human label, e.g. "Last 24 hours"
	TimeframeHours int    // TimeframeUnread, TimeframeThread or hours
	RequestedBy    string
	CreatedAt      time.Time
}

// ReadStatus is the per-(user, channel) high-water mark for unread
// summaries. An absent row means nothing has been read yet.
type ReadStatus struct {
	UserID     string
	ChannelID  string
	LastReadTs string // platform decimal timestamp string
	UpdatedAt  time.Time
}
