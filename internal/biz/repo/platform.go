package repo

import (
	"context"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// ChannelInfo describes a channel as reported by the platform.
type ChannelInfo struct {
	ID        string
	Name      string
	IsPrivate bool
}

// UserInfo describes a user as reported by the platform.
type UserInfo struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
}

// HistoryPage is one page of channel history. NextCursor is empty on the
// last page.
type HistoryPage struct {
	Messages   []domain.Message
	NextCursor string
}

// PlatformClient is the chat platform interface
// Responsible for channel/user lookup, history retrieval and message delivery
type PlatformClient interface {
	// ListChannels lists the channels visible to the bot
	ListChannels(ctx context.Context) ([]ChannelInfo, error)

	// GetChannelInfo looks up a channel by ID
	GetChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error)

	// GetChannelInfoByName looks up a channel by name, returns (nil, nil) when absent
	GetChannelInfoByName(ctx context.Context, name string) (*ChannelInfo, error)

	// History fetches one page of channel history, newest first.
	// oldest bounds the window (exclusive); empty means unbounded.
	History(ctx context.Context, channelID, oldest, cursor string) (*HistoryPage, error)

	// Replies fetches a full thread, parent first then replies
	Replies(ctx context.Context, channelID, parentTs string) ([]domain.Message, error)

	// SendMessage posts a text message to a channel
	SendMessage(ctx context.Context, channelID, text string) error

	// OpenDirectMessage opens (or resumes) the bot's DM with a user and
	// returns its channel ID
	OpenDirectMessage(ctx context.Context, userID string) (string, error)

	// LookupUser looks up a user by ID, returns (nil, nil) when absent
	LookupUser(ctx context.Context, userID string) (*UserInfo, error)

	// SearchUserByName finds a user by username/display name, returns
	// (nil, nil) when absent
	SearchUserByName(ctx context.Context, name string) (*UserInfo, error)
}
