package repo

import (
	"context"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// Summarizer is the AI summary generator interface
// Implementations own prompt construction and formatted fallbacks for
// empty input; a returned error means generation itself failed
type Summarizer interface {
	// Summarize produces a channel summary for a rolling window
	Summarize(ctx context.Context, messages []domain.Message, channelName string, timeframeHours int) (string, error)

	// SummarizeUnread produces an unread-messages summary.
	// totalUnread is the raw unread count before filtering.
	SummarizeUnread(ctx context.Context, messages []domain.Message, channelName string, totalUnread int) (string, error)

	// SummarizeThread produces a summary of a single thread
	SummarizeThread(ctx context.Context, messages []domain.Message, channelName string) (string, error)

	// SummarizeVIPDM produces a summary of the bot's DM with a VIP
	SummarizeVIPDM(ctx context.Context, vip *domain.VIPUser, messages []domain.Message) (string, error)

	// SummarizeVIPChannel produces a summary of a VIP's activity in a channel
	SummarizeVIPChannel(ctx context.Context, vip *domain.VIPUser, channelName string, messages []domain.Message) (string, error)

	// FollowUp answers a follow-up question against a previous summary
	FollowUp(ctx context.Context, question, summaryText, channelName string) (string, error)
}
