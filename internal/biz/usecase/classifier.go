package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

// ruleConfidenceThreshold short-circuits AI classification when the rule
// tables already matched with high confidence.
const ruleConfidenceThreshold = 0.8

type intentPattern struct {
	re         *regexp.Regexp
	confidence float64
}

// RuleClassifier recognizes intents from fixed pattern tables. It never
// fails; an unmatched message classifies as general chat with low
// confidence.
type RuleClassifier struct {
	summary  []intentPattern
	help     []intentPattern
	greeting []intentPattern
	status   []intentPattern

	channelRe   *regexp.Regexp
	inChannelRe *regexp.Regexp
	hoursRe     *regexp.Regexp
	daysRe      *regexp.Regexp
	weeksRe     *regexp.Regexp
}

// NewRuleClassifier compiles the pattern tables.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		summary: []intentPattern{
			{regexp.MustCompile(`(?i)\bsummar(y|ize|ise)\b`), 0.95},
			{regexp.MustCompile(`(?i)\bcatch\s+me\s+up\b`), 0.9},
			{regexp.MustCompile(`(?i)\bwhat\s+(did\s+i\s+miss|happened)\b`), 0.9},
			{regexp.MustCompile(`(?i)\brecap\b`), 0.9},
			{regexp.MustCompile(`(?i)\bupdate\s+me\b`), 0.85},
		},
		help: []intentPattern{
			{regexp.MustCompile(`(?i)\bhelp\b`), 0.9},
			{regexp.MustCompile(`(?i)\bwhat\s+can\s+you\s+do\b`), 0.9},
			{regexp.MustCompile(`(?i)\bhow\s+do\s+(i|you)\b`), 0.85},
			{regexp.MustCompile(`(?i)\bcommands?\b`), 0.85},
		},
		greeting: []intentPattern{
			{regexp.MustCompile(`(?i)^\s*(hi|hello|hey|yo|howdy)\b`), 0.9},
			{regexp.MustCompile(`(?i)\bgood\s+(morning|afternoon|evening)\b`), 0.9},
		},
		status: []intentPattern{
			{regexp.MustCompile(`(?i)\bare\s+you\s+(there|up|working|online|alive)\b`), 0.9},
			{regexp.MustCompile(`(?i)^\s*(status|ping)\s*[?!.]*\s*$`), 0.9},
		},
		channelRe:   regexp.MustCompile(`#([\w-]+)`),
		inChannelRe: regexp.MustCompile(`(?i)\b(?:in|for|from)\s+#?([\w-]+)\s+channel\b`),
		hoursRe:     regexp.MustCompile(`(?i)\b(\d+)\s*(?:hours?|hrs?)\b`),
		daysRe:      regexp.MustCompile(`(?i)\b(\d+)\s*days?\b`),
		weeksRe:     regexp.MustCompile(`(?i)\b(\d+)\s*weeks?\b`),
	}
}

// Classify applies the pattern tables. The error return is always nil; it
// exists to satisfy the IntentClassifier contract.
func (c *RuleClassifier) Classify(ctx context.Context, text, userID string) (*domain.Classification, error) {
	if conf := matchBest(c.summary, text); conf > 0 {
		hours, label := c.ExtractTimeframe(text)
		return &domain.Classification{
			Intent:     domain.IntentSummaryRequest,
			Confidence: conf,
			Params: domain.IntentParams{
				ChannelName:    c.extractChannel(text),
				TimeframeHours: hours,
				TimeframeText:  label,
				Reasoning:      "matched summary pattern",
			},
		}, nil
	}
	if conf := matchBest(c.help, text); conf > 0 {
		return &domain.Classification{Intent: domain.IntentHelpRequest, Confidence: conf}, nil
	}
	if conf := matchBest(c.greeting, text); conf > 0 {
		return &domain.Classification{Intent: domain.IntentGreeting, Confidence: conf}, nil
	}
	if conf := matchBest(c.status, text); conf > 0 {
		return &domain.Classification{Intent: domain.IntentStatusCheck, Confidence: conf}, nil
	}
	return &domain.Classification{Intent: domain.IntentGeneralChat, Confidence: 0.3}, nil
}

func matchBest(patterns []intentPattern, text string) float64 {
	best := 0.0
	for _, p := range patterns {
		if p.re.MatchString(text) && p.confidence > best {
			best = p.confidence
		}
	}
	return best
}

func (c *RuleClassifier) extractChannel(text string) string {
	if m := c.channelRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := c.inChannelRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ExtractTimeframe reads a timeframe out of natural language. Defaults to
// the last 24 hours.
func (c *RuleClassifier) ExtractTimeframe(text string) (int, string) {
	if m := c.hoursRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return n, HoursToTimeframeText(n)
		}
	}
	if m := c.daysRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return n * 24, HoursToTimeframeText(n * 24)
		}
	}
	if m := c.weeksRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return n * 168, HoursToTimeframeText(n * 168)
		}
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "yesterday"):
		return 48, HoursToTimeframeText(48)
	case strings.Contains(lower, "this week"), strings.Contains(lower, "last week"):
		return 168, HoursToTimeframeText(168)
	}
	return 24, HoursToTimeframeText(24)
}

// HoursToTimeframeText renders a window size as a human label.
func HoursToTimeframeText(hours int) string {
	switch {
	case hours == 24:
		return "last 24 hours"
	case hours < 24:
		return fmt.Sprintf("last %d hours", hours)
	case hours%168 == 0:
		weeks := hours / 168
		if weeks == 1 {
			return "last week"
		}
		return fmt.Sprintf("last %d weeks", weeks)
	case hours%24 == 0:
		return fmt.Sprintf("last %d days", hours/24)
	default:
		return fmt.Sprintf("last %d hours", hours)
	}
}

// BlendedClassifier combines the rule tables with an optional AI
// classifier. Rules win outright above the confidence threshold; below it
// the AI result is used when it is more confident. AI failures fall back
// to the rule result.
type BlendedClassifier struct {
	rules *RuleClassifier
	ai    repo.IntentClassifier // nil disables the AI half
}

// NewBlendedClassifier creates a blended classifier. ai may be nil.
func NewBlendedClassifier(rules *RuleClassifier, ai repo.IntentClassifier) *BlendedClassifier {
	return &BlendedClassifier{rules: rules, ai: ai}
}

// Classify implements repo.IntentClassifier.
func (c *BlendedClassifier) Classify(ctx context.Context, text, userID string) (*domain.Classification, error) {
	ruleResult, _ := c.rules.Classify(ctx, text, userID)
	if ruleResult.Confidence > ruleConfidenceThreshold || c.ai == nil {
		return ruleResult, nil
	}

	aiResult, err := c.ai.Classify(ctx, text, userID)
	if err != nil {
		fmt.Printf("[Classifier] ai classification: %v\n", err)
		return ruleResult, nil
	}
	if aiResult.Confidence > ruleResult.Confidence {
		return aiResult, nil
	}
	return ruleResult, nil
}
