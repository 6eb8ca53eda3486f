package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// DefaultFollowupIndicators are the substrings that mark a message as a
// probable follow-up question when a usable context exists.
var DefaultFollowupIndicators = []string{
	"what", "who", "when", "where", "why", "how",
	"can you", "could you", "tell me", "explain",
	"more details", "elaborate", "expand", "?",
}

// ContextUsecase manages per-(user, channel) conversation contexts and the
// follow-up heuristic. Staleness is a read-time predicate only; stale rows
// stay in the store until overwritten.
type ContextUsecase struct {
	contexts   repo.ContextRepo
	indicators []string
	now        func() time.Time
}

// NewContextUsecase creates a new context usecase. An empty indicator list
// falls back to DefaultFollowupIndicators.
func NewContextUsecase(contexts repo.ContextRepo, indicators []string) *ContextUsecase {
	if len(indicators) == 0 {
		indicators = DefaultFollowupIndicators
	}
	return &ContextUsecase{
		contexts:   contexts,
		indicators: indicators,
		now:        time.Now,
	}
}

// SaveSummaryContext records a delivered summary as the current context
// for the user in the channel.
func (uc *ContextUsecase) SaveSummaryContext(ctx context.Context, userID, channelID string, data domain.SummaryContextData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode summary context: %w", err)
	}
	return uc.upsert(ctx, userID, channelID, domain.ContextSummary, string(payload), "summary_request")
}

// SaveChatContext records a general chat exchange as the current context
// for the user in the channel.
func (uc *ContextUsecase) SaveChatContext(ctx context.Context, userID, channelID, lastMessage, lastResponse string) error {
	payload, err := json.Marshal(domain.ChatContextData{
		LastMessage:  lastMessage,
		LastResponse: lastResponse,
	})
	if err != nil {
		return fmt.Errorf("encode chat context: %w", err)
	}
	return uc.upsert(ctx, userID, channelID, domain.ContextChat, string(payload), "general_chat")
}

func (uc *ContextUsecase) upsert(ctx context.Context, userID, channelID, contextType, data, interaction string) error {
	now := uc.now()
	return uc.contexts.Upsert(ctx, &domain.ConversationContext{
		UserID:              userID,
		ChannelID:           channelID,
		ContextType:         contextType,
		Data:                data,
		LastInteractionType: interaction,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
}

// Active returns the usable context for the key, or nil when no context
// exists or the stored one has gone stale.
func (uc *ContextUsecase) Active(ctx context.Context, userID, channelID string) (*domain.ConversationContext, error) {
	c, err := uc.contexts.Get(ctx, userID, channelID)
	if err != nil {
		return nil, fmt.Errorf("get context: %w", err)
	}
	if c == nil || !c.Usable(uc.now()) {
		return nil, nil
	}
	return c, nil
}

// Touch refreshes the context's update time so an active follow-up
// conversation keeps its context alive.
func (uc *ContextUsecase) Touch(ctx context.Context, c *domain.ConversationContext) error {
	c.UpdatedAt = uc.now()
	return uc.contexts.Upsert(ctx, c)
}

// IsFollowupQuestion applies the configured indicator heuristic to a
// message text.
func (uc *ContextUsecase) IsFollowupQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range uc.indicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
