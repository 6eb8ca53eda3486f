package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// fakeContextRepo is an in-memory ContextRepo.
type fakeContextRepo struct {
	rows      map[string]*domain.ConversationContext
	upsertErr error
}

func newFakeContextRepo() *fakeContextRepo {
	return &fakeContextRepo{rows: make(map[string]*domain.ConversationContext)}
}

func (f *fakeContextRepo) key(userID, channelID string) string { return userID + "/" + channelID }

func (f *fakeContextRepo) Get(ctx context.Context, userID, channelID string) (*domain.ConversationContext, error) {
	c, ok := f.rows[f.key(userID, channelID)]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeContextRepo) Upsert(ctx context.Context, c *domain.ConversationContext) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *c
	if old, ok := f.rows[f.key(c.UserID, c.ChannelID)]; ok {
		copied.CreatedAt = old.CreatedAt
	}
	f.rows[f.key(c.UserID, c.ChannelID)] = &copied
	return nil
}

func TestContextUpsertReplacesPerKey(t *testing.T) {
	store := newFakeContextRepo()
	uc := NewContextUsecase(store, nil)
	ctx := context.Background()

	if err := uc.SaveSummaryContext(ctx, "U1", "C1", domain.SummaryContextData{ChannelName: "general", Summary: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := uc.SaveChatContext(ctx, "U1", "C1", "hi", "hello"); err != nil {
		t.Fatal(err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("rows = %d, want 1 (upsert per key)", len(store.rows))
	}
	c, err := uc.Active(ctx, "U1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.ContextType != domain.ContextChat {
		t.Fatalf("active context = %+v, want chat context", c)
	}
}

func TestContextStalenessBoundary(t *testing.T) {
	store := newFakeContextRepo()
	uc := NewContextUsecase(store, nil)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return base }
	if err := uc.SaveSummaryContext(ctx, "U1", "C1", domain.SummaryContextData{Summary: "s"}); err != nil {
		t.Fatal(err)
	}

	// 1h59m later the context is still usable.
	uc.now = func() time.Time { return base.Add(2*time.Hour - time.Minute) }
	c, err := uc.Active(ctx, "U1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("context should be usable before the 2h mark")
	}

	// At 2h00m01s it reads as absent; the row itself is untouched.
	uc.now = func() time.Time { return base.Add(2*time.Hour + time.Second) }
	c, err = uc.Active(ctx, "U1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Fatalf("stale context returned: %+v", c)
	}
	if len(store.rows) != 1 {
		t.Error("stale row should not be deleted")
	}
}

func TestContextTouchExtendsLifetime(t *testing.T) {
	store := newFakeContextRepo()
	uc := NewContextUsecase(store, nil)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return base }
	if err := uc.SaveSummaryContext(ctx, "U1", "C1", domain.SummaryContextData{Summary: "s"}); err != nil {
		t.Fatal(err)
	}

	uc.now = func() time.Time { return base.Add(90 * time.Minute) }
	c, err := uc.Active(ctx, "U1", "C1")
	if err != nil || c == nil {
		t.Fatalf("active: %v, %+v", err, c)
	}
	if err := uc.Touch(ctx, c); err != nil {
		t.Fatal(err)
	}

	// 3h30m after the original save, but only 2h minus a minute after
	// the touch.
	uc.now = func() time.Time { return base.Add(3*time.Hour + 29*time.Minute) }
	c, err = uc.Active(ctx, "U1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("touched context should still be usable")
	}
}

func TestIsFollowupQuestion(t *testing.T) {
	uc := NewContextUsecase(newFakeContextRepo(), nil)

	followups := []string{
		"What about the deployment?",
		"could you elaborate",
		"more details please",
		"and then?",
	}
	for _, text := range followups {
		if !uc.IsFollowupQuestion(text) {
			t.Errorf("IsFollowupQuestion(%q) = false, want true", text)
		}
	}

	if uc.IsFollowupQuestion("thanks, all clear") {
		t.Error("plain acknowledgement should not read as a follow-up")
	}
}

func TestFollowupIndicatorsAreConfigurable(t *testing.T) {
	uc := NewContextUsecase(newFakeContextRepo(), []string{"dime", "por que"})

	if !uc.IsFollowupQuestion("Dime mas sobre el resumen") {
		t.Error("configured indicator did not match")
	}
	if uc.IsFollowupQuestion("what about it") {
		t.Error("default indicators should be replaced, not merged")
	}
}
