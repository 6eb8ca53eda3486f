package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContextTTL is how long a conversation context stays usable after its
// last update. Staleness is evaluated at read time only; rows are never
// expired in the background.
const ContextTTL = 2 * time.Hour

// Context types.
const (
	ContextSummary = "summary"
	ContextChat    = "chat"
)

// ConversationContext is the per-(user, channel) interaction state used to
// answer follow-up questions. At most one row exists per key; writes are
// atomic upserts.
type ConversationContext struct {
	UserID              string
	ChannelID           string
	ContextType         string // ContextSummary or ContextChat
	Data                string // JSON payload, shape depends on ContextType
	LastInteractionType string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Usable reports whether the context can still serve follow-ups at the
// given read time.
func (c *ConversationContext) Usable(now time.Time) bool {
	if c.ContextType != ContextSummary && c.ContextType != ContextChat {
		return false
	}
	return now.Sub(c.UpdatedAt) < ContextTTL
}

// SummaryContextData is the payload stored after delivering a summary.
type SummaryContextData struct {
	ChannelName    string `json:"channel_name"`
	Summary        string `json:"summary"`
	MessageCount   int    `json:"message_count"`
	TimeframeHours int    `json:"timeframe_hours"`
	SummaryType    string `json:"summary_type,omitempty"` // "channel", "unread", "thread"
}

// ChatContextData is the payload stored after a general chat exchange.
type ChatContextData struct {
	LastMessage  string `json:"last_message"`
	LastResponse string `json:"last_response"`
}

// SummaryData decodes the payload of a summary context.
func (c *ConversationContext) SummaryData() (*SummaryContextData, error) {
	if c.ContextType != ContextSummary {
		return nil, fmt.Errorf("context type is %q, not %q", c.ContextType, ContextSummary)
	}
	var data SummaryContextData
	if err := json.Unmarshal([]byte(c.Data), &data); err != nil {
		return nil, fmt.Errorf("decode summary context: %w", err)
	}
	return &data, nil
}

// ChatData decodes the payload of a chat context.
func (c *ConversationContext) ChatData() (*ChatContextData, error) {
	if c.ContextType != ContextChat {
		return nil, fmt.Errorf("context type is %q, not %q", c.ContextType, ContextChat)
	}
	var data ChatContextData
	if err := json.Unmarshal([]byte(c.Data), &data); err != nil {
		return nil, fmt.Errorf("decode chat context: %w", err)
	}
	return &data, nil
}
