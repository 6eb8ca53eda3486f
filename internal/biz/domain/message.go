package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Message represents a channel message as returned by the platform history
// and replies APIs. Ts is the platform timestamp, a decimal string such as
// "1715112000.000200" that orders messages numerically, never lexically.
type Message struct {
	Ts         string
	User       string
	Text       string
	ThreadTs   string // parent ts when the message belongs to a thread
	ReplyCount int
	BotID      string // non-empty when an app/bot authored the message
	Subtype    string // non-empty for joins, pins and other system events
}

// TsValue parses the timestamp for numeric comparison. Malformed
// timestamps sort first.
func (m *Message) TsValue() float64 {
	v, err := strconv.ParseFloat(m.Ts, 64)
	if err != nil {
		return 0
	}
	return v
}

// IsThreadReply reports whether the message is a reply inside a thread
// (a thread parent carries its own ts in ThreadTs and does not count).
func (m *Message) IsThreadReply() bool {
	return m.ThreadTs != "" && m.ThreadTs != m.Ts
}

// IsThreadParent reports whether the message has started a thread.
func (m *Message) IsThreadParent() bool {
	return m.ReplyCount > 0 && m.Subtype == ""
}

// Mentions reports whether the message text contains an explicit mention
// token for the given user.
func (m *Message) Mentions(userID string) bool {
	return userID != "" && strings.Contains(m.Text, MentionToken(userID))
}

// MentionToken renders the platform mention markup for a user.
func MentionToken(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// SortMessagesAscending orders messages oldest-first by numeric timestamp.
func SortMessagesAscending(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].TsValue() < msgs[j].TsValue()
	})
}
