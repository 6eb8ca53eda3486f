package domain

import "time"

// VIPUser is one entry in a requester's personal VIP directory. Rows are
// soft-deleted: removing a VIP flips IsActive, and adding the same user
// again reactivates the existing row.
type VIPUser struct {
	UserID      string // platform user ID of the VIP
	AddedBy     string // platform user ID of the directory owner
	Username    string
	DisplayName string
	IsActive    bool
	AddedAt     time.Time
}

// Label returns the friendliest available name for the VIP.
func (v *VIPUser) Label() string {
	if v.DisplayName != "" {
		return v.DisplayName
	}
	return v.Username
}

// VIP summary types.
const (
	VIPSummaryDM      = "dm"
	VIPSummaryChannel = "channel"
)

// VIPSummaryRecord is one row of VIP summary history.
type VIPSummaryRecord struct {
	ID             string
	VIPUserID      string
	SummaryType    string // VIPSummaryDM or VIPSummaryChannel
	ChannelID      string // empty for DM summaries
	ChannelName    string
	Content        string
	RequestedBy    string
	MessageCount   int
	TimeframeHours int
	CreatedAt      time.Time
}
