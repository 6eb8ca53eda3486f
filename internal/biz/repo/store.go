package repo

import (
	"context"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// ContextRepo persists conversation contexts, one row per (user, channel).
type ContextRepo interface {
	// Get returns the context for the key, (nil, nil) when absent
	Get(ctx context.Context, userID, channelID string) (*domain.ConversationContext, error)

	// Upsert atomically creates or replaces the row for the key,
	// preserving CreatedAt on replace
	Upsert(ctx context.Context, c *domain.ConversationContext) error
}

// LedgerRepo persists command execution records.
type LedgerRepo interface {
	// Create inserts a new record
	Create(ctx context.Context, rec *domain.CommandRecord) error

	// UpdateStatus advances a record's lifecycle state
	UpdateStatus(ctx context.Context, id string, status domain.CommandStatus, errMsg string, execSeconds float64) error

	// Recent lists the newest records for diagnostics
	Recent(ctx context.Context, limit int) ([]*domain.CommandRecord, error)
}

// ReadStatusRepo persists per-(user, channel) read high-water marks.
type ReadStatusRepo interface {
	// Get returns the read status for the key, (nil, nil) when absent
	Get(ctx context.Context, userID, channelID string) (*domain.ReadStatus, error)

	// Upsert atomically creates or replaces the row for the key
	Upsert(ctx context.Context, rs *domain.ReadStatus) error
}

// VIPRepo persists per-owner VIP directories and VIP summary history.
type VIPRepo interface {
	// Get returns the row for (userID, addedBy) regardless of active
	// flag, (nil, nil) when absent
	Get(ctx context.Context, userID, addedBy string) (*domain.VIPUser, error)

	// GetActiveByUsername finds an active VIP in the owner's directory
	// by username, (nil, nil) when absent
	GetActiveByUsername(ctx context.Context, username, addedBy string) (*domain.VIPUser, error)

	// ListActive lists the owner's active VIPs
	ListActive(ctx context.Context, addedBy string) ([]*domain.VIPUser, error)

	// Save creates or replaces the row keyed by (userID, addedBy)
	Save(ctx context.Context, vip *domain.VIPUser) error

	// AddHistory appends a VIP summary history row
	AddHistory(ctx context.Context, rec *domain.VIPSummaryRecord) error
}

// SummaryRepo persists delivered summaries and their channel records.
type SummaryRepo interface {
	// GetOrCreateWorkspace resolves a workspace row by platform ID
	GetOrCreateWorkspace(ctx context.Context, workspaceID, name string) (*domain.Workspace, error)

	// GetOrCreateChannel resolves a channel row under a workspace
	GetOrCreateChannel(ctx context.Context, workspaceRef int64, channelID, name string, isPrivate bool) (*domain.Channel, error)

	// Create inserts a summary row
	Create(ctx context.Context, s *domain.Summary) error

	// Recent lists the newest summaries for diagnostics
	Recent(ctx context.Context, limit int) ([]*domain.Summary, error)
}

// InteractionRepo persists the natural-language interaction log.
type InteractionRepo interface {
	// Create inserts an interaction row
	Create(ctx context.Context, it *domain.Interaction) error
}
