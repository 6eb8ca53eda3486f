package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/summarybot/summarybot/internal/biz/repo"
	"github.com/summarybot/summarybot/internal/conf"
	"github.com/summarybot/summarybot/internal/infra/gemini"

	_ "modernc.org/sqlite"
)

// Repositories contains all repositories
type Repositories struct {
	Context     repo.ContextRepo
	Ledger      repo.LedgerRepo
	ReadStatus  repo.ReadStatusRepo
	VIP         repo.VIPRepo
	Summary     repo.SummaryRepo
	Interaction repo.InteractionRepo
	Summarizer  repo.Summarizer
	Classifier  repo.IntentClassifier // AI half; nil without a Gemini client

	db *sql.DB
}

// NewRepositories opens the database and creates all repositories.
// geminiClient may be nil, in which case the summarizer degrades to
// formatted fallbacks and the AI classifier is disabled.
func NewRepositories(geminiClient *gemini.Client, dbPath string, prompts *conf.PromptsConfig) (*Repositories, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	contextRepo, err := NewContextRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	ledgerRepo, err := NewLedgerRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	readStatusRepo, err := NewReadStatusRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	vipRepo, err := NewVIPRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	summaryRepo, err := NewSummaryRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	interactionRepo, err := NewInteractionRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if prompts == nil {
		prompts = conf.DefaultPromptsConfig()
	}

	return &Repositories{
		Context:     contextRepo,
		Ledger:      ledgerRepo,
		ReadStatus:  readStatusRepo,
		VIP:         vipRepo,
		Summary:     summaryRepo,
		Interaction: interactionRepo,
		Summarizer:  NewGeminiSummarizer(geminiClient, prompts),
		Classifier:  NewGeminiClassifier(geminiClient),
		db:          db,
	}, nil
}

// Close closes the underlying database.
func (r *Repositories) Close() error {
	return r.db.Close()
}

func openDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
