package data

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestContextRepoUpsertPreservesCreatedAt(t *testing.T) {
	repo, err := NewContextRepo(testDB(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Upsert(ctx, &domain.ConversationContext{
		UserID: "U1", ChannelID: "C1",
		ContextType: domain.ContextSummary, Data: `{"summary":"one"}`,
		CreatedAt: first, UpdatedAt: first,
	}); err != nil {
		t.Fatal(err)
	}

	later := first.Add(30 * time.Minute)
	if err := repo.Upsert(ctx, &domain.ConversationContext{
		UserID: "U1", ChannelID: "C1",
		ContextType: domain.ContextChat, Data: `{"last_message":"hi"}`,
		CreatedAt: later, UpdatedAt: later,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "U1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("context not found after upsert")
	}
	if got.ContextType != domain.ContextChat {
		t.Errorf("context type = %q, want chat", got.ContextType)
	}
	if !got.CreatedAt.Equal(first) {
		t.Errorf("created_at = %v, want preserved %v", got.CreatedAt, first)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, later)
	}

	if missing, err := repo.Get(ctx, "U1", "C2"); err != nil || missing != nil {
		t.Errorf("absent key: got (%+v, %v), want (nil, nil)", missing, err)
	}
}

func TestLedgerRepoLifecycleAndRecent(t *testing.T) {
	repo, err := NewLedgerRepo(testDB(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"rec-1", "rec-2"} {
		if err := repo.Create(ctx, &domain.CommandRecord{
			ID: id, Command: "/summary", UserID: "U1", ChannelID: "C1",
			Status: domain.StatusInitiated, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.UpdateStatus(ctx, "rec-2", domain.StatusCompleted, "", 1.25); err != nil {
		t.Fatal(err)
	}

	recs, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("recent = %d records, want 2", len(recs))
	}
	if recs[0].ID != "rec-2" {
		t.Errorf("recent[0] = %s, want newest first", recs[0].ID)
	}
	if recs[0].Status != domain.StatusCompleted || recs[0].ExecutionSeconds != 1.25 {
		t.Errorf("updated record = %+v", recs[0])
	}
}

func TestReadStatusRepoUpsert(t *testing.T) {
	repo, err := NewReadStatusRepo(testDB(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if rs, err := repo.Get(ctx, "U1", "C1"); err != nil || rs != nil {
		t.Fatalf("absent key: got (%+v, %v), want (nil, nil)", rs, err)
	}

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Upsert(ctx, &domain.ReadStatus{UserID: "U1", ChannelID: "C1", LastReadTs: "1715112000.000200", UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert(ctx, &domain.ReadStatus{UserID: "U1", ChannelID: "C1", LastReadTs: "1715115600.000001", UpdatedAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	rs, err := repo.Get(ctx, "U1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if rs == nil || rs.LastReadTs != "1715115600.000001" {
		t.Errorf("read status = %+v, want the second timestamp", rs)
	}
}

func TestVIPRepoSaveAndLookup(t *testing.T) {
	repo, err := NewVIPRepo(testDB(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	vip := &domain.VIPUser{
		UserID: "UALICE", AddedBy: "UOWNER",
		Username: "alice", DisplayName: "Alice Smith",
		IsActive: true, AddedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.Save(ctx, vip); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetActiveByUsername(ctx, "alice", "UOWNER")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.UserID != "UALICE" {
		t.Fatalf("lookup by username = %+v", got)
	}

	// Soft deactivation hides the row from the active lookup but not from Get.
	vip.IsActive = false
	if err := repo.Save(ctx, vip); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.GetActiveByUsername(ctx, "alice", "UOWNER"); got != nil {
		t.Errorf("inactive vip still visible by username: %+v", got)
	}
	got, err = repo.Get(ctx, "UALICE", "UOWNER")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.IsActive {
		t.Errorf("Get after deactivation = %+v, want inactive row", got)
	}

	vips, err := repo.ListActive(ctx, "UOWNER")
	if err != nil {
		t.Fatal(err)
	}
	if len(vips) != 0 {
		t.Errorf("active list = %d entries, want 0", len(vips))
	}
}

func TestSummaryRepoWorkspaceChannelAndSummary(t *testing.T) {
	repo, err := NewSummaryRepo(testDB(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ws, err := repo.GetOrCreateWorkspace(ctx, "T1", "acme")
	if err != nil {
		t.Fatal(err)
	}
	again, err := repo.GetOrCreateWorkspace(ctx, "T1", "acme")
	if err != nil {
		t.Fatal(err)
	}
	if ws.ID != again.ID {
		t.Errorf("workspace row duplicated: %d vs %d", ws.ID, again.ID)
	}

	ch, err := repo.GetOrCreateChannel(ctx, ws.ID, "C1", "general", false)
	if err != nil {
		t.Fatal(err)
	}
	renamed, err := repo.GetOrCreateChannel(ctx, ws.ID, "C1", "general-renamed", true)
	if err != nil {
		t.Fatal(err)
	}
	if ch.ID != renamed.ID {
		t.Errorf("channel row duplicated: %d vs %d", ch.ID, renamed.ID)
	}
	if renamed.Name != "general-renamed" || !renamed.IsPrivate {
		t.Errorf("channel not refreshed: %+v", renamed)
	}

	s := &domain.Summary{
		ChannelRef: ch.ID, SummaryText: "things happened",
		MessageCount: 5, Timeframe: "last 24 hours", TimeframeHours: 24,
		RequestedBy: "U1", CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	if s.ID == 0 {
		t.Error("summary id not assigned")
	}

	recent, err := repo.Recent(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].SummaryText != "things happened" {
		t.Errorf("recent = %+v", recent)
	}
}
