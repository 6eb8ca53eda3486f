package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// vipRepo implements the VIP directory repository
type vipRepo struct {
	db *sql.DB
}

// NewVIPRepo creates a new VIP repository
func NewVIPRepo(db *sql.DB) (repo.VIPRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vip_users (
			user_id TEXT NOT NULL,
			added_by TEXT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, added_by)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create vip_users table: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vip_summary_history (
			id TEXT PRIMARY KEY,
			vip_user_id TEXT NOT NULL,
			summary_type TEXT NOT NULL,
			channel_id TEXT NOT NULL DEFAULT '',
			channel_name TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			requested_by TEXT NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			timeframe_hours INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create vip_summary_history table: %w", err)
	}
	return &vipRepo{db: db}, nil
}

// Get gets the row for (userID, addedBy) regardless of active flag
func (r *vipRepo) Get(ctx context.Context, userID, addedBy string) (*domain.VIPUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, added_by, username, display_name, is_active, added_at
		FROM vip_users
		WHERE user_id = ? AND added_by = ?
	`, userID, addedBy)
	return scanVIP(row)
}

// GetActiveByUsername finds an active VIP by username in the owner's directory
func (r *vipRepo) GetActiveByUsername(ctx context.Context, username, addedBy string) (*domain.VIPUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, added_by, username, display_name, is_active, added_at
		FROM vip_users
		WHERE username = ? AND added_by = ? AND is_active = 1
	`, username, addedBy)
	return scanVIP(row)
}

func scanVIP(row *sql.Row) (*domain.VIPUser, error) {
	var vip domain.VIPUser
	var isActive int
	var addedAt int64
	err := row.Scan(&vip.UserID, &vip.AddedBy, &vip.Username, &vip.DisplayName, &isActive, &addedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vip: %w", err)
	}
	vip.IsActive = isActive != 0
	vip.AddedAt = time.Unix(addedAt, 0)
	return &vip, nil
}

// ListActive lists the owner's active VIPs
func (r *vipRepo) ListActive(ctx context.Context, addedBy string) ([]*domain.VIPUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, added_by, username, display_name, is_active, added_at
		FROM vip_users
		WHERE added_by = ? AND is_active = 1
		ORDER BY added_at ASC
	`, addedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list vips: %w", err)
	}
	defer rows.Close()

	var vips []*domain.VIPUser
	for rows.Next() {
		var vip domain.VIPUser
		var isActive int
		var addedAt int64
		if err := rows.Scan(&vip.UserID, &vip.AddedBy, &vip.Username, &vip.DisplayName, &isActive, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vip: %w", err)
		}
		vip.IsActive = isActive != 0
		vip.AddedAt = time.Unix(addedAt, 0)
		vips = append(vips, &vip)
	}
	return vips, nil
}

// Save creates or replaces the row keyed by (user_id, added_by)
func (r *vipRepo) Save(ctx context.Context, vip *domain.VIPUser) error {
	isActive := 0
	if vip.IsActive {
		isActive = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vip_users (user_id, added_by, username, display_name, is_active, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, added_by) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			is_active = excluded.is_active,
			added_at = excluded.added_at
	`, vip.UserID, vip.AddedBy, vip.Username, vip.DisplayName, isActive, vip.AddedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save vip: %w", err)
	}
	return nil
}

// AddHistory appends a VIP summary history row
func (r *vipRepo) AddHistory(ctx context.Context, rec *domain.VIPSummaryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vip_summary_history (id, vip_user_id, summary_type, channel_id, channel_name, content, requested_by, message_count, timeframe_hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.VIPUserID,
		rec.SummaryType,
		rec.ChannelID,
		rec.ChannelName,
		rec.Content,
		rec.RequestedBy,
		rec.MessageCount,
		rec.TimeframeHours,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vip summary history: %w", err)
	}
	return nil
}
