package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// interactionRepo implements the interaction log repository
type interactionRepo struct {
	db *sql.DB
}

// NewInteractionRepo creates a new interaction log repository
func NewInteractionRepo(db *sql.DB) (repo.InteractionRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chatbot_interactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT '',
			user_message TEXT NOT NULL DEFAULT '',
			bot_response TEXT NOT NULL DEFAULT '',
			intent TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0,
			processing_seconds REAL NOT NULL DEFAULT 0,
			parameters TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create chatbot_interactions table: %w", err)
	}
	return &interactionRepo{db: db}, nil
}

// Create inserts an interaction row
func (r *interactionRepo) Create(ctx context.Context, it *domain.Interaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chatbot_interactions (id, user_id, channel_id, message_type, user_message, bot_response, intent, confidence, processing_seconds, parameters, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		it.ID,
		it.UserID,
		it.ChannelID,
		it.MessageType,
		it.UserMessage,
		it.BotResponse,
		it.Intent,
		it.Confidence,
		it.ProcessingSeconds,
		it.Parameters,
		it.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}
