package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// FetchUsecase retrieves and filters channel messages. Platform failures
// degrade to whatever was accumulated so far; they are logged, never
// propagated.
type FetchUsecase struct {
	platform  repo.PlatformClient
	botUserID string
	now       func() time.Time
}

// NewFetchUsecase creates a new fetch usecase. The bot's own user ID is
// injected so its messages can be filtered out of every window.
func NewFetchUsecase(platform repo.PlatformClient, botUserID string) *FetchUsecase {
	return &FetchUsecase{
		platform:  platform,
		botUserID: botUserID,
		now:       time.Now,
	}
}

// FetchRolling fetches the channel messages of the last `hours` hours.
// Returns the filtered messages and the raw count before filtering. When
// sorted is true the result is ordered oldest-first.
func (uc *FetchUsecase) FetchRolling(ctx context.Context, channelID string, hours int, sorted bool) ([]domain.Message, int) {
	oldest := fmt.Sprintf("%.6f", float64(uc.now().Add(-time.Duration(hours)*time.Hour).UnixNano())/1e9)
	raw, total := uc.paginate(ctx, channelID, oldest)
	msgs := uc.filter(raw, "")
	if sorted {
		domain.SortMessagesAscending(msgs)
	}
	return msgs, total
}

// FetchSince fetches the channel messages newer than sinceTs. An empty
// sinceTs means the whole available history. Messages authored by the
// requester are excluded: the requester has read their own messages.
func (uc *FetchUsecase) FetchSince(ctx context.Context, channelID, sinceTs, requesterID string) ([]domain.Message, int) {
	oldest := sinceTs
	if oldest == "" {
		oldest = "0"
	}
	raw, total := uc.paginate(ctx, channelID, oldest)
	return uc.filter(raw, requesterID), total
}

// FetchThread fetches a full thread and returns the filtered replies in
// ascending timestamp order, plus the raw message count including the
// parent.
func (uc *FetchUsecase) FetchThread(ctx context.Context, channelID, parentTs string) ([]domain.Message, int) {
	raw, err := uc.platform.Replies(ctx, channelID, parentTs)
	if err != nil {
		fmt.Printf("[Fetch] thread %s/%s: %v\n", channelID, parentTs, err)
		return nil, 0
	}
	msgs := uc.filter(raw, "")
	domain.SortMessagesAscending(msgs)
	return msgs, len(raw)
}

// LatestThreadTs scans the most recent page of channel history for the
// newest message that started a thread. Returns "" when the channel has no
// recent threads.
func (uc *FetchUsecase) LatestThreadTs(ctx context.Context, channelID string) string {
	page, err := uc.platform.History(ctx, channelID, "", "")
	if err != nil {
		fmt.Printf("[Fetch] latest thread in %s: %v\n", channelID, err)
		return ""
	}
	// History pages are newest first.
	for _, m := range page.Messages {
		if m.IsThreadParent() {
			return m.Ts
		}
	}
	return ""
}

// paginate walks the cursor chain until the platform reports no next page.
// A failed page ends the loop with the pages accumulated so far.
func (uc *FetchUsecase) paginate(ctx context.Context, channelID, oldest string) ([]domain.Message, int) {
	var all []domain.Message
	cursor := ""
	for page := 0; ; page++ {
		resp, err := uc.platform.History(ctx, channelID, oldest, cursor)
		if err != nil {
			fmt.Printf("[Fetch] history %s page %d: %v\n", channelID, page, err)
			break
		}
		all = append(all, resp.Messages...)
		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return all, len(all)
}

// filter drops messages that never belong in a summary, in fixed order:
// bot-authored, system subtypes, the bot's own user, and optionally the
// requester's own messages.
func (uc *FetchUsecase) filter(msgs []domain.Message, excludeUser string) []domain.Message {
	var out []domain.Message
	for _, m := range msgs {
		if m.BotID != "" {
			continue
		}
		if m.Subtype != "" {
			continue
		}
		if uc.botUserID != "" && m.User == uc.botUserID {
			continue
		}
		if excludeUser != "" && m.User == excludeUser {
			continue
		}
		out = append(out, m)
	}
	return out
}
