package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// readStatusRepo implements the read status repository
type readStatusRepo struct {
	db *sql.DB
}

// NewReadStatusRepo creates a new read status repository
func NewReadStatusRepo(db *sql.DB) (repo.ReadStatusRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_read_status (
			user_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			last_read_ts TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, channel_id)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create user_read_status table: %w", err)
	}
	return &readStatusRepo{db: db}, nil
}

// Get gets the read status for (user, channel)
func (r *readStatusRepo) Get(ctx context.Context, userID, channelID string) (*domain.ReadStatus, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, channel_id, last_read_ts, updated_at
		FROM user_read_status
		WHERE user_id = ? AND channel_id = ?
	`, userID, channelID)

	var rs domain.ReadStatus
	var updatedAt int64
	err := row.Scan(&rs.UserID, &rs.ChannelID, &rs.LastReadTs, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query read status: %w", err)
	}
	rs.UpdatedAt = time.Unix(updatedAt, 0)
	return &rs, nil
}

// Upsert atomically creates or replaces the row
func (r *readStatusRepo) Upsert(ctx context.Context, rs *domain.ReadStatus) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_read_status (user_id, channel_id, last_read_ts, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, channel_id) DO UPDATE SET
			last_read_ts = excluded.last_read_ts,
			updated_at = excluded.updated_at
	`, rs.UserID, rs.ChannelID, rs.LastReadTs, rs.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert read status: %w", err)
	}
	return nil
}
