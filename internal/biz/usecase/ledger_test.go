package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// fakeLedgerRepo records every lifecycle write.
type fakeLedgerRepo struct {
	created   []*domain.CommandRecord
	updates   []domain.CommandStatus
	createErr error
	updateErr error
	last      struct {
		status  domain.CommandStatus
		errMsg  string
		seconds float64
	}
}

func (f *fakeLedgerRepo) Create(ctx context.Context, rec *domain.CommandRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *rec
	f.created = append(f.created, &copied)
	return nil
}

func (f *fakeLedgerRepo) UpdateStatus(ctx context.Context, id string, status domain.CommandStatus, errMsg string, execSeconds float64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, status)
	f.last.status = status
	f.last.errMsg = errMsg
	f.last.seconds = execSeconds
	return nil
}

func (f *fakeLedgerRepo) Recent(ctx context.Context, limit int) ([]*domain.CommandRecord, error) {
	return f.created, nil
}

func TestLedgerLifecycle(t *testing.T) {
	store := &fakeLedgerRepo{}
	uc := NewLedgerUsecase(store)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return base }

	rec := uc.Begin(ctx, "/summary", "U1", "C1", "unread")
	if rec.ID == "" {
		t.Fatal("record id not assigned")
	}
	if rec.Status != domain.StatusInitiated {
		t.Fatalf("status = %q, want initiated", rec.Status)
	}
	if len(store.created) != 1 {
		t.Fatalf("created rows = %d, want 1", len(store.created))
	}

	uc.MarkProcessing(ctx, rec)
	uc.now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	uc.Complete(ctx, rec, base)

	if rec.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want completed", rec.Status)
	}
	if rec.ExecutionSeconds < 1.4 || rec.ExecutionSeconds > 1.6 {
		t.Errorf("execution seconds = %v, want ~1.5", rec.ExecutionSeconds)
	}
	want := []domain.CommandStatus{domain.StatusProcessing, domain.StatusCompleted}
	if len(store.updates) != len(want) {
		t.Fatalf("updates = %v, want %v", store.updates, want)
	}
	for i := range want {
		if store.updates[i] != want[i] {
			t.Errorf("update[%d] = %q, want %q", i, store.updates[i], want[i])
		}
	}
}

func TestLedgerFailBeforeProcessingHasNoExecutionTime(t *testing.T) {
	store := &fakeLedgerRepo{}
	uc := NewLedgerUsecase(store)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return base }
	rec := uc.Begin(ctx, "/summary", "U1", "C1", "thread nonsense")

	uc.now = func() time.Time { return base.Add(time.Second) }
	uc.Fail(ctx, rec, "not a valid message link", base)

	if rec.Status != domain.StatusFailed {
		t.Errorf("status = %q, want failed", rec.Status)
	}
	if rec.ExecutionSeconds != 0 {
		t.Errorf("execution seconds = %v, want 0 for pre-processing failure", rec.ExecutionSeconds)
	}
	if store.last.errMsg != "not a valid message link" {
		t.Errorf("error message = %q", store.last.errMsg)
	}
}

func TestLedgerFailAfterProcessingRecordsExecutionTime(t *testing.T) {
	store := &fakeLedgerRepo{}
	uc := NewLedgerUsecase(store)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return base }
	rec := uc.Begin(ctx, "/summary", "U1", "C1", "")
	uc.MarkProcessing(ctx, rec)

	uc.now = func() time.Time { return base.Add(2 * time.Second) }
	uc.Fail(ctx, rec, "generation failed", base)

	if rec.ExecutionSeconds < 1.9 || rec.ExecutionSeconds > 2.1 {
		t.Errorf("execution seconds = %v, want ~2", rec.ExecutionSeconds)
	}
}

func TestLedgerWritesAreFireAndForget(t *testing.T) {
	store := &fakeLedgerRepo{
		createErr: fmt.Errorf("disk full"),
		updateErr: fmt.Errorf("disk full"),
	}
	uc := NewLedgerUsecase(store)
	ctx := context.Background()

	rec := uc.Begin(ctx, "/summary", "U1", "C1", "")
	if rec == nil || rec.ID == "" {
		t.Fatal("Begin must return a usable record despite the write failure")
	}
	uc.MarkProcessing(ctx, rec)
	uc.Complete(ctx, rec, time.Now())
	if rec.Status != domain.StatusCompleted {
		t.Errorf("in-memory status = %q, want completed", rec.Status)
	}
}
