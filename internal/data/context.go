package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// contextRepo implements the conversation context repository
type contextRepo struct {
	db *sql.DB
}

// NewContextRepo creates a new conversation context repository
func NewContextRepo(db *sql.DB) (repo.ContextRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS conversation_contexts (
			user_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			context_type TEXT NOT NULL,
			context_data TEXT NOT NULL DEFAULT '',
			last_interaction_type TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, channel_id)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create contexts table: %w", err)
	}
	return &contextRepo{db: db}, nil
}

// Get gets the context for (user, channel)
func (r *contextRepo) Get(ctx context.Context, userID, channelID string) (*domain.ConversationContext, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, channel_id, context_type, context_data, last_interaction_type, created_at, updated_at
		FROM conversation_contexts
		WHERE user_id = ? AND channel_id = ?
	`, userID, channelID)

	var c domain.ConversationContext
	var createdAt, updatedAt int64
	err := row.Scan(&c.UserID, &c.ChannelID, &c.ContextType, &c.Data, &c.LastInteractionType, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query context: %w", err)
	}

	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}

// Upsert atomically creates or replaces the row, preserving created_at
// for an existing key.
func (r *contextRepo) Upsert(ctx context.Context, c *domain.ConversationContext) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_contexts (user_id, channel_id, context_type, context_data, last_interaction_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, channel_id) DO UPDATE SET
			context_type = excluded.context_type,
			context_data = excluded.context_data,
			last_interaction_type = excluded.last_interaction_type,
			updated_at = excluded.updated_at
	`,
		c.UserID,
		c.ChannelID,
		c.ContextType,
		c.Data,
		c.LastInteractionType,
		c.CreatedAt.Unix(),
		c.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert context: %w", err)
	}
	return nil
}
