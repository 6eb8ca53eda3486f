package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// summaryRepo implements the summary repository
type summaryRepo struct {
	db *sql.DB
}

// NewSummaryRepo creates a new summary repository
func NewSummaryRepo(db *sql.DB) (repo.SummaryRepo, error) {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS workspaces (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workspace_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS channels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workspace_ref INTEGER NOT NULL,
			channel_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			is_private INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			UNIQUE (workspace_ref, channel_id)
		)`,
		`CREATE TABLE IF NOT EXISTS channel_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_ref INTEGER NOT NULL,
			summary_text TEXT NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			timeframe TEXT NOT NULL DEFAULT '',
			timeframe_hours INTEGER NOT NULL DEFAULT 24,
			requested_by TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channel_summaries_created_at ON channel_summaries(created_at)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create summary tables: %w", err)
		}
	}
	return &summaryRepo{db: db}, nil
}

// GetOrCreateWorkspace resolves a workspace row by platform ID
func (r *summaryRepo) GetOrCreateWorkspace(ctx context.Context, workspaceID, name string) (*domain.Workspace, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspaces (workspace_id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (workspace_id) DO NOTHING
	`, workspaceID, name, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure workspace: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, created_at FROM workspaces WHERE workspace_id = ?
	`, workspaceID)
	var ws domain.Workspace
	var createdAt int64
	if err := row.Scan(&ws.ID, &ws.WorkspaceID, &ws.Name, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to query workspace: %w", err)
	}
	ws.CreatedAt = time.Unix(createdAt, 0)
	return &ws, nil
}

// GetOrCreateChannel resolves a channel row under a workspace
func (r *summaryRepo) GetOrCreateChannel(ctx context.Context, workspaceRef int64, channelID, name string, isPrivate bool) (*domain.Channel, error) {
	private := 0
	if isPrivate {
		private = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channels (workspace_ref, channel_id, name, is_private, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (workspace_ref, channel_id) DO UPDATE SET
			name = excluded.name,
			is_private = excluded.is_private
	`, workspaceRef, channelID, name, private, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure channel: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_ref, channel_id, name, is_private, created_at
		FROM channels WHERE workspace_ref = ? AND channel_id = ?
	`, workspaceRef, channelID)
	var ch domain.Channel
	var privateFlag int
	var createdAt int64
	if err := row.Scan(&ch.ID, &ch.WorkspaceID, &ch.ChannelID, &ch.Name, &privateFlag, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to query channel: %w", err)
	}
	ch.IsPrivate = privateFlag != 0
	ch.CreatedAt = time.Unix(createdAt, 0)
	return &ch, nil
}

// Create inserts a summary row
func (r *summaryRepo) Create(ctx context.Context, s *domain.Summary) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_summaries (channel_ref, summary_text, message_count, timeframe, timeframe_hours, requested_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ChannelRef, s.SummaryText, s.MessageCount, s.Timeframe, s.TimeframeHours, s.RequestedBy, s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		s.ID = id
	}
	return nil
}

// Recent lists the newest summaries
func (r *summaryRepo) Recent(ctx context.Context, limit int) ([]*domain.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, channel_ref, summary_text, message_count, timeframe, timeframe_hours, requested_by, created_at
		FROM channel_summaries
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.Summary
	for rows.Next() {
		var s domain.Summary
		var createdAt int64
		if err := rows.Scan(&s.ID, &s.ChannelRef, &s.SummaryText, &s.MessageCount, &s.Timeframe, &s.TimeframeHours, &s.RequestedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0)
		summaries = append(summaries, &s)
	}
	return summaries, nil
}
