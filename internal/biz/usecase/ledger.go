package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// LedgerUsecase drives the command execution ledger. Ledger writes are
// fire-and-forget: a failed write is logged and command processing carries
// on regardless.
type LedgerUsecase struct {
	ledger repo.LedgerRepo
	now    func() time.Time
}

// NewLedgerUsecase creates a new ledger usecase.
func NewLedgerUsecase(ledger repo.LedgerRepo) *LedgerUsecase {
	return &LedgerUsecase{ledger: ledger, now: time.Now}
}

// Begin writes the initiated record for a command, synchronously, before
// any work starts.
func (uc *LedgerUsecase) Begin(ctx context.Context, command, userID, channelID, params string) *domain.CommandRecord {
	rec := &domain.CommandRecord{
		ID:         uuid.NewString(),
		Command:    command,
		UserID:     userID,
		ChannelID:  channelID,
		Parameters: params,
		Status:     domain.StatusInitiated,
		CreatedAt:  uc.now(),
	}
	if err := uc.ledger.Create(ctx, rec); err != nil {
		fmt.Printf("[Ledger] create %s: %v\n", command, err)
	}
	return rec
}

// MarkProcessing advances the record once retrieval or generation begins.
func (uc *LedgerUsecase) MarkProcessing(ctx context.Context, rec *domain.CommandRecord) {
	rec.Status = domain.StatusProcessing
	if err := uc.ledger.UpdateStatus(ctx, rec.ID, domain.StatusProcessing, "", 0); err != nil {
		fmt.Printf("[Ledger] mark processing %s: %v\n", rec.ID, err)
	}
}

// Complete finalizes the record as completed, with the execution time
// measured from handler entry.
func (uc *LedgerUsecase) Complete(ctx context.Context, rec *domain.CommandRecord, startedAt time.Time) {
	rec.ExecutionSeconds = uc.now().Sub(startedAt).Seconds()
	rec.Status = domain.StatusCompleted
	if err := uc.ledger.UpdateStatus(ctx, rec.ID, domain.StatusCompleted, "", rec.ExecutionSeconds); err != nil {
		fmt.Printf("[Ledger] complete %s: %v\n", rec.ID, err)
	}
}

// Fail finalizes the record as failed. Execution time is only recorded
// when processing had already started; an early validation failure leaves
// it at zero.
func (uc *LedgerUsecase) Fail(ctx context.Context, rec *domain.CommandRecord, errMsg string, startedAt time.Time) {
	if rec.Status == domain.StatusProcessing {
		rec.ExecutionSeconds = uc.now().Sub(startedAt).Seconds()
	}
	rec.Status = domain.StatusFailed
	rec.ErrorMessage = errMsg
	if err := uc.ledger.UpdateStatus(ctx, rec.ID, domain.StatusFailed, errMsg, rec.ExecutionSeconds); err != nil {
		fmt.Printf("[Ledger] fail %s: %v\n", rec.ID, err)
	}
}
