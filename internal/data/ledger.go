package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// ledgerRepo implements the command execution ledger repository
type ledgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo creates a new ledger repository
func NewLedgerRepo(db *sql.DB) (repo.LedgerRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bot_commands (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			user_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			parameters TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			execution_seconds REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot_commands table: %w", err)
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bot_commands_created_at ON bot_commands(created_at)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot_commands index: %w", err)
	}
	return &ledgerRepo{db: db}, nil
}

// Create inserts a new command record
func (r *ledgerRepo) Create(ctx context.Context, rec *domain.CommandRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bot_commands (id, command, user_id, channel_id, parameters, status, error_message, execution_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Command,
		rec.UserID,
		rec.ChannelID,
		rec.Parameters,
		string(rec.Status),
		rec.ErrorMessage,
		rec.ExecutionSeconds,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert command record: %w", err)
	}
	return nil
}

// UpdateStatus advances a record's lifecycle state
func (r *ledgerRepo) UpdateStatus(ctx context.Context, id string, status domain.CommandStatus, errMsg string, execSeconds float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bot_commands SET status = ?, error_message = ?, execution_seconds = ? WHERE id = ?
	`, string(status), errMsg, execSeconds, id)
	if err != nil {
		return fmt.Errorf("failed to update command status: %w", err)
	}
	return nil
}

// Recent lists the newest command records
func (r *ledgerRepo) Recent(ctx context.Context, limit int) ([]*domain.CommandRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, command, user_id, channel_id, parameters, status, error_message, execution_seconds, created_at
		FROM bot_commands
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list command records: %w", err)
	}
	defer rows.Close()

	var recs []*domain.CommandRecord
	for rows.Next() {
		var rec domain.CommandRecord
		var status string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Command, &rec.UserID, &rec.ChannelID, &rec.Parameters, &status, &rec.ErrorMessage, &rec.ExecutionSeconds, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan command record: %w", err)
		}
		rec.Status = domain.CommandStatus(status)
		rec.CreatedAt = time.Unix(createdAt, 0)
		recs = append(recs, &rec)
	}
	return recs, nil
}
