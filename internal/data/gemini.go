package data

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
	"github.com/summarybot/summarybot/internal/conf"
	"github.com/summarybot/summarybot/internal/infra/gemini"
)

// geminiSummarizer implements the Summarizer repository. Generation
// failures degrade to a formatted apology report rather than an error;
// the command still completes and the user learns what went wrong.
type geminiSummarizer struct {
	client  *gemini.Client
	prompts *conf.PromptsConfig
}

// NewGeminiSummarizer creates a Gemini-backed summarizer. client may be
// nil, in which case every request degrades to the fallback report.
func NewGeminiSummarizer(client *gemini.Client, prompts *conf.PromptsConfig) repo.Summarizer {
	return &geminiSummarizer{client: client, prompts: prompts}
}

// Summarize produces a channel summary for a rolling window
func (r *geminiSummarizer) Summarize(ctx context.Context, messages []domain.Message, channelName string, timeframeHours int) (string, error) {
	timeframe := timeframeLabel(timeframeHours)
	if len(messages) == 0 {
		return emptyReport(channelName, timeframe), nil
	}
	body := r.generate(ctx, r.prompts.Summary.ChannelPrompt, map[string]string{
		"channel":   channelName,
		"timeframe": timeframe,
		"messages":  formatMessages(messages),
	}, channelName)
	return report(channelName, timeframe, len(messages), body), nil
}

// SummarizeUnread produces an unread-messages summary
func (r *geminiSummarizer) SummarizeUnread(ctx context.Context, messages []domain.Message, channelName string, totalUnread int) (string, error) {
	if len(messages) == 0 {
		return fmt.Sprintf("✅ You're all caught up in #%s! No unread messages.", channelName), nil
	}
	body := r.generate(ctx, r.prompts.Summary.UnreadPrompt, map[string]string{
		"channel":  channelName,
		"messages": formatMessages(messages),
	}, channelName)
	header := fmt.Sprintf("📬 *Unread Summary – #%s* (%d unread)", channelName, totalUnread)
	return header + "\n\n" + body, nil
}

// SummarizeThread produces a summary of a single thread
func (r *geminiSummarizer) SummarizeThread(ctx context.Context, messages []domain.Message, channelName string) (string, error) {
	if len(messages) == 0 {
		return fmt.Sprintf("🔍 That thread in #%s has no messages to summarize.", channelName), nil
	}
	body := r.generate(ctx, r.prompts.Summary.ThreadPrompt, map[string]string{
		"channel":  channelName,
		"messages": formatMessages(messages),
	}, channelName)
	header := fmt.Sprintf("🧵 *Thread Summary – #%s* (%d messages)", channelName, len(messages))
	return header + "\n\n" + body, nil
}

// SummarizeVIPDM produces a summary of the bot's DM with a VIP
func (r *geminiSummarizer) SummarizeVIPDM(ctx context.Context, vip *domain.VIPUser, messages []domain.Message) (string, error) {
	if len(messages) == 0 {
		return fmt.Sprintf("🔍 No recent direct messages with *%s*.", vip.Label()), nil
	}
	body := r.generate(ctx, r.prompts.Summary.VIPDMPrompt, map[string]string{
		"vip":      vip.Label(),
		"messages": formatMessages(messages),
	}, vip.Label())
	header := fmt.Sprintf("⭐ *VIP DM Summary – %s* (%d messages)", vip.Label(), len(messages))
	return header + "\n\n" + body, nil
}

// SummarizeVIPChannel produces a summary of a VIP's activity in a channel
func (r *geminiSummarizer) SummarizeVIPChannel(ctx context.Context, vip *domain.VIPUser, channelName string, messages []domain.Message) (string, error) {
	if len(messages) == 0 {
		return fmt.Sprintf("🔍 *%s* has no recent activity in #%s.", vip.Label(), channelName), nil
	}
	body := r.generate(ctx, r.prompts.Summary.VIPChanPrompt, map[string]string{
		"vip":      vip.Label(),
		"channel":  channelName,
		"messages": formatMessages(messages),
	}, vip.Label())
	header := fmt.Sprintf("⭐ *VIP Summary – %s in #%s* (%d messages)", vip.Label(), channelName, len(messages))
	return header + "\n\n" + body, nil
}

// FollowUp answers a follow-up question against a previous summary. Unlike
// the summary methods, a generation failure is returned as an error so the
// caller can fall back to the keyword responder.
func (r *geminiSummarizer) FollowUp(ctx context.Context, question, summaryText, channelName string) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("no generation backend configured")
	}
	prompt := conf.Render(r.prompts.Summary.FollowUpPrompt, map[string]string{
		"channel":  channelName,
		"summary":  summaryText,
		"question": question,
	})
	answer, err := r.client.Chat(ctx, r.prompts.Summary.SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("follow-up generation: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (r *geminiSummarizer) generate(ctx context.Context, template string, values map[string]string, subject string) string {
	if r.client == nil {
		return generationUnavailable(subject)
	}
	body, err := r.client.Chat(ctx, r.prompts.Summary.SystemPrompt, conf.Render(template, values))
	if err != nil {
		fmt.Printf("[Summarizer] generation for %s: %v\n", subject, err)
		return generationUnavailable(subject)
	}
	return strings.TrimSpace(body)
}

func report(channelName, timeframe string, count int, body string) string {
	return fmt.Sprintf("📋 *Summary Report – #%s*\n_%s · %d messages_\n\n%s", channelName, timeframe, count, body)
}

func emptyReport(channelName, timeframe string) string {
	return fmt.Sprintf("🔍 No messages found in #%s for the %s. It's been quiet!", channelName, timeframe)
}

func generationUnavailable(subject string) string {
	return fmt.Sprintf("⚠️ I couldn't generate the summary for %s right now. Please try again in a bit.", subject)
}

func timeframeLabel(hours int) string {
	switch hours {
	case domain.TimeframeUnread:
		return "unread messages"
	case domain.TimeframeThread:
		return "thread"
	}
	switch {
	case hours == 24:
		return "last 24 hours"
	case hours%168 == 0 && hours >= 168:
		weeks := hours / 168
		if weeks == 1 {
			return "last week"
		}
		return fmt.Sprintf("last %d weeks", weeks)
	case hours%24 == 0 && hours > 24:
		return fmt.Sprintf("last %d days", hours/24)
	default:
		return fmt.Sprintf("last %d hours", hours)
	}
}

var (
	mentionMarkupRe = regexp.MustCompile(`<@([A-Z0-9]+)>`)
	channelMarkupRe = regexp.MustCompile(`<#[A-Z0-9]+\|([^>]+)>`)
	linkMarkupRe    = regexp.MustCompile(`<(https?://[^|>]+)\|([^>]+)>`)
	bareLinkRe      = regexp.MustCompile(`<(https?://[^>]+)>`)
)

// cleanMarkup strips platform markup so prompts read as plain text.
func cleanMarkup(text string) string {
	text = mentionMarkupRe.ReplaceAllString(text, "@$1")
	text = channelMarkupRe.ReplaceAllString(text, "#$1")
	text = linkMarkupRe.ReplaceAllString(text, "$2")
	text = bareLinkRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	return text
}

// formatMessages renders messages as "[time] user: text" lines for the
// prompt.
func formatMessages(messages []domain.Message) string {
	var b strings.Builder
	for _, m := range messages {
		ts := time.Unix(int64(m.TsValue()), 0).UTC().Format("Jan 2 15:04")
		fmt.Fprintf(&b, "[%s] %s: %s\n", ts, m.User, cleanMarkup(m.Text))
	}
	return b.String()
}

// geminiClassifier implements the AI half of intent classification.
type geminiClassifier struct {
	client *gemini.Client
}

// NewGeminiClassifier creates a Gemini-backed intent classifier. Returns
// nil when client is nil so callers can disable the AI half cleanly.
func NewGeminiClassifier(client *gemini.Client) repo.IntentClassifier {
	if client == nil {
		return nil
	}
	return &geminiClassifier{client: client}
}

const classifierSystemPrompt = `You classify messages sent to a Slack summary bot.

Intents:
- summary_request: the user wants a summary of a channel, thread or unread messages
- help_request: the user asks what the bot can do
- greeting: the user is saying hello
- status_check: the user asks whether the bot is alive
- general_chat: anything else

Respond with JSON only:
{"intent": "...", "confidence": 0.0, "channel_name": "", "timeframe_hours": 24, "reasoning": ""}`

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// Classify recognizes the intent of a message via the model
func (r *geminiClassifier) Classify(ctx context.Context, text, userID string) (*domain.Classification, error) {
	resp, err := r.client.ChatJSON(ctx, classifierSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	raw := jsonBlockRe.FindString(resp)
	if raw == "" {
		return nil, fmt.Errorf("classify: no JSON in response %q", resp)
	}

	var parsed struct {
		Intent         string  `json:"intent"`
		Confidence     float64 `json:"confidence"`
		ChannelName    string  `json:"channel_name"`
		TimeframeHours int     `json:"timeframe_hours"`
		Reasoning      string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("classify: decode response: %w", err)
	}

	intent := domain.Intent(parsed.Intent)
	switch intent {
	case domain.IntentSummaryRequest, domain.IntentHelpRequest, domain.IntentGreeting,
		domain.IntentStatusCheck, domain.IntentGeneralChat:
	default:
		intent = domain.IntentGeneralChat
	}

	hours := parsed.TimeframeHours
	if hours <= 0 {
		hours = 24
	}

	return &domain.Classification{
		Intent:     intent,
		Confidence: parsed.Confidence,
		Params: domain.IntentParams{
			ChannelName:    strings.TrimPrefix(parsed.ChannelName, "#"),
			TimeframeHours: hours,
			Reasoning:      parsed.Reasoning,
		},
	}, nil
}
