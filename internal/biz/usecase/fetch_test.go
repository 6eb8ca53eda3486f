package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// fakePlatform is a scriptable PlatformClient for pipeline tests.
type fakePlatform struct {
	pages       []repo.HistoryPage
	historyErr  map[int]error // page index -> error
	historyCall int
	replies     []domain.Message
	repliesErr  error

	channels   []repo.ChannelInfo
	users      []repo.UserInfo
	sent       []string
	sentTo     []string
	dmChannels map[string]string
	sendErr    error
}

func (f *fakePlatform) ListChannels(ctx context.Context) ([]repo.ChannelInfo, error) {
	return f.channels, nil
}

func (f *fakePlatform) GetChannelInfo(ctx context.Context, channelID string) (*repo.ChannelInfo, error) {
	for _, c := range f.channels {
		if c.ID == channelID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("channel %s not found", channelID)
}

func (f *fakePlatform) GetChannelInfoByName(ctx context.Context, name string) (*repo.ChannelInfo, error) {
	for _, c := range f.channels {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakePlatform) History(ctx context.Context, channelID, oldest, cursor string) (*repo.HistoryPage, error) {
	i := f.historyCall
	f.historyCall++
	if err, ok := f.historyErr[i]; ok {
		return nil, err
	}
	if i >= len(f.pages) {
		return &repo.HistoryPage{}, nil
	}
	page := f.pages[i]
	return &page, nil
}

func (f *fakePlatform) Replies(ctx context.Context, channelID, parentTs string) ([]domain.Message, error) {
	if f.repliesErr != nil {
		return nil, f.repliesErr
	}
	return f.replies, nil
}

func (f *fakePlatform) SendMessage(ctx context.Context, channelID, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	f.sentTo = append(f.sentTo, channelID)
	return nil
}

func (f *fakePlatform) OpenDirectMessage(ctx context.Context, userID string) (string, error) {
	if ch, ok := f.dmChannels[userID]; ok {
		return ch, nil
	}
	return "", fmt.Errorf("cannot open dm with %s", userID)
}

func (f *fakePlatform) LookupUser(ctx context.Context, userID string) (*repo.UserInfo, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakePlatform) SearchUserByName(ctx context.Context, name string) (*repo.UserInfo, error) {
	for _, u := range f.users {
		if u.Name == name || u.DisplayName == name {
			return &u, nil
		}
	}
	return nil, nil
}

func msg(ts, user, text string) domain.Message {
	return domain.Message{Ts: ts, User: user, Text: text}
}

func TestFetchRollingPaginatesUntilCursorEnds(t *testing.T) {
	platform := &fakePlatform{
		pages: []repo.HistoryPage{
			{Messages: []domain.Message{msg("3.0", "U1", "c"), msg("2.0", "U2", "b")}, NextCursor: "page2"},
			{Messages: []domain.Message{msg("1.0", "U1", "a")}},
		},
	}
	uc := NewFetchUsecase(platform, "UBOT")
	uc.now = func() time.Time { return time.Unix(1000, 0) }

	msgs, total := uc.FetchRolling(context.Background(), "C1", 24, false)
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(msgs) != 3 {
		t.Errorf("len(msgs) = %d, want 3", len(msgs))
	}
	if platform.historyCall != 2 {
		t.Errorf("history calls = %d, want 2", platform.historyCall)
	}
}

func TestFetchSinceConsumesEveryOfferedPage(t *testing.T) {
	// A first-time unread request has no lower bound and can span a long
	// cursor chain; every page the platform offers must be consumed.
	const pageCount = 25
	pages := make([]repo.HistoryPage, pageCount)
	for i := 0; i < pageCount; i++ {
		pages[i] = repo.HistoryPage{
			Messages: []domain.Message{msg(fmt.Sprintf("%d.0", pageCount-i), "U2", "msg")},
		}
		if i < pageCount-1 {
			pages[i].NextCursor = fmt.Sprintf("page%d", i+1)
		}
	}
	platform := &fakePlatform{pages: pages}
	uc := NewFetchUsecase(platform, "UBOT")

	msgs, total := uc.FetchSince(context.Background(), "C1", "", "UREQ")
	if platform.historyCall != pageCount {
		t.Errorf("history calls = %d, want %d", platform.historyCall, pageCount)
	}
	if total != pageCount || len(msgs) != pageCount {
		t.Errorf("got %d msgs (total %d), want all %d pages kept", len(msgs), total, pageCount)
	}
}

func TestFetchFilterOrder(t *testing.T) {
	platform := &fakePlatform{
		pages: []repo.HistoryPage{{Messages: []domain.Message{
			{Ts: "5.0", User: "U9", Text: "app", BotID: "B1"},
			{Ts: "4.0", User: "U1", Text: "joined", Subtype: "channel_join"},
			{Ts: "3.0", User: "UBOT", Text: "my own reply"},
			{Ts: "2.0", User: "U2", Text: "keep me"},
		}}},
	}
	uc := NewFetchUsecase(platform, "UBOT")

	msgs, total := uc.FetchRolling(context.Background(), "C1", 24, false)
	if total != 4 {
		t.Errorf("raw total = %d, want 4", total)
	}
	if len(msgs) != 1 || msgs[0].User != "U2" {
		t.Fatalf("filtered = %+v, want only U2's message", msgs)
	}
}

func TestFetchSinceExcludesRequesterOwnMessages(t *testing.T) {
	platform := &fakePlatform{
		pages: []repo.HistoryPage{{Messages: []domain.Message{
			msg("3.0", "UREQ", "mine"),
			msg("2.0", "U2", "theirs"),
		}}},
	}
	uc := NewFetchUsecase(platform, "UBOT")

	msgs, total := uc.FetchSince(context.Background(), "C1", "1.0", "UREQ")
	if total != 2 {
		t.Errorf("raw total = %d, want 2", total)
	}
	if len(msgs) != 1 || msgs[0].User != "U2" {
		t.Fatalf("filtered = %+v, want only U2's message", msgs)
	}
}

func TestFetchDegradesToPartialOnPageError(t *testing.T) {
	platform := &fakePlatform{
		pages: []repo.HistoryPage{
			{Messages: []domain.Message{msg("2.0", "U1", "first page")}, NextCursor: "page2"},
		},
		historyErr: map[int]error{1: fmt.Errorf("rate limited")},
	}
	uc := NewFetchUsecase(platform, "UBOT")

	msgs, total := uc.FetchRolling(context.Background(), "C1", 24, false)
	if total != 1 || len(msgs) != 1 {
		t.Fatalf("got %d msgs (total %d), want the first page kept", len(msgs), total)
	}
}

func TestFetchThreadSortsAscending(t *testing.T) {
	platform := &fakePlatform{
		replies: []domain.Message{
			{Ts: "1.0", ThreadTs: "1.0", User: "U1", Text: "parent", ReplyCount: 2},
			{Ts: "9.0", ThreadTs: "1.0", User: "U2", Text: "late"},
			{Ts: "5.0", ThreadTs: "1.0", User: "U3", Text: "early"},
		},
	}
	uc := NewFetchUsecase(platform, "UBOT")

	msgs, raw := uc.FetchThread(context.Background(), "C1", "1.0")
	if raw != 3 {
		t.Errorf("raw = %d, want 3", raw)
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i-1].TsValue() > msgs[i].TsValue() {
			t.Fatalf("messages not ascending: %v", msgs)
		}
	}
}

func TestLatestThreadTsSkipsNonParents(t *testing.T) {
	platform := &fakePlatform{
		pages: []repo.HistoryPage{{Messages: []domain.Message{
			msg("9.0", "U1", "no replies"),
			{Ts: "8.0", User: "U2", Text: "pinned", ReplyCount: 3, Subtype: "pinned_item"},
			{Ts: "7.0", User: "U3", Text: "real thread", ReplyCount: 2},
		}}},
	}
	uc := NewFetchUsecase(platform, "UBOT")

	if ts := uc.LatestThreadTs(context.Background(), "C1"); ts != "7.0" {
		t.Errorf("latest thread ts = %q, want 7.0", ts)
	}

	empty := NewFetchUsecase(&fakePlatform{}, "UBOT")
	if ts := empty.LatestThreadTs(context.Background(), "C1"); ts != "" {
		t.Errorf("latest thread ts = %q, want empty", ts)
	}
}
