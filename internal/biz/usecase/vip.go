package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// VIP directory errors surfaced to the user.
var (
	ErrSelfVIP      = errors.New("you cannot add yourself as a VIP")
	ErrAlreadyVIP   = errors.New("user is already in your VIP list")
	ErrNotVIP       = errors.New("user is not in your VIP list")
	ErrUserNotFound = errors.New("user not found")
)

// VIPUsecase manages per-owner VIP directories. Removal is a soft delete;
// re-adding a removed VIP reactivates the existing row.
type VIPUsecase struct {
	vips     repo.VIPRepo
	platform repo.PlatformClient
	now      func() time.Time
}

// NewVIPUsecase creates a new VIP directory usecase.
func NewVIPUsecase(vips repo.VIPRepo, platform repo.PlatformClient) *VIPUsecase {
	return &VIPUsecase{vips: vips, platform: platform, now: time.Now}
}

// Add puts a user into the owner's VIP directory.
func (uc *VIPUsecase) Add(ctx context.Context, targetUserID, ownerID string) (*domain.VIPUser, error) {
	if targetUserID == ownerID {
		return nil, ErrSelfVIP
	}

	info, err := uc.platform.LookupUser(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("look up user %s: %w", targetUserID, err)
	}
	if info == nil {
		return nil, ErrUserNotFound
	}

	existing, err := uc.vips.Get(ctx, targetUserID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get vip: %w", err)
	}
	if existing != nil && existing.IsActive {
		return nil, ErrAlreadyVIP
	}
	if existing != nil {
		existing.IsActive = true
		existing.AddedAt = uc.now()
		existing.Username = info.Name
		existing.DisplayName = displayName(info)
		if err := uc.vips.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("reactivate vip: %w", err)
		}
		return existing, nil
	}

	vip := &domain.VIPUser{
		UserID:      targetUserID,
		AddedBy:     ownerID,
		Username:    info.Name,
		DisplayName: displayName(info),
		IsActive:    true,
		AddedAt:     uc.now(),
	}
	if err := uc.vips.Save(ctx, vip); err != nil {
		return nil, fmt.Errorf("save vip: %w", err)
	}
	return vip, nil
}

// Remove deactivates a VIP in the owner's directory.
func (uc *VIPUsecase) Remove(ctx context.Context, targetUserID, ownerID string) (*domain.VIPUser, error) {
	existing, err := uc.vips.Get(ctx, targetUserID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get vip: %w", err)
	}
	if existing == nil || !existing.IsActive {
		return nil, ErrNotVIP
	}
	existing.IsActive = false
	if err := uc.vips.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("deactivate vip: %w", err)
	}
	return existing, nil
}

// List returns the owner's active VIPs.
func (uc *VIPUsecase) List(ctx context.Context, ownerID string) ([]*domain.VIPUser, error) {
	vips, err := uc.vips.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list vips: %w", err)
	}
	return vips, nil
}

// FindByUsername resolves an active VIP in the owner's directory by
// username, with any leading '@' stripped. Returns (nil, nil) when the
// user is not a VIP.
func (uc *VIPUsecase) FindByUsername(ctx context.Context, username, ownerID string) (*domain.VIPUser, error) {
	name := strings.TrimPrefix(username, "@")
	vip, err := uc.vips.GetActiveByUsername(ctx, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find vip %s: %w", name, err)
	}
	return vip, nil
}

// RecordSummary appends a VIP summary history row. Best effort.
func (uc *VIPUsecase) RecordSummary(ctx context.Context, rec *domain.VIPSummaryRecord) {
	rec.CreatedAt = uc.now()
	if err := uc.vips.AddHistory(ctx, rec); err != nil {
		fmt.Printf("[VIP] record summary history: %v\n", err)
	}
}

func displayName(info *repo.UserInfo) string {
	if info.DisplayName != "" {
		return info.DisplayName
	}
	if info.RealName != "" {
		return info.RealName
	}
	return info.Name
}
