package repo

import (
	"context"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// IntentClassifier is the natural-language intent classification interface
type IntentClassifier interface {
	// Classify recognizes the intent of a message and extracts parameters
	Classify(ctx context.Context, text, userID string) (*domain.Classification, error)
}
