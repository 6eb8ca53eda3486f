package data

import (
	"context"
	"strings"
	"testing"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/conf"
)

func TestCleanMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ping <@U12345> please", "ping @U12345 please"},
		{"see <#C024BE91L|general> for details", "see #general for details"},
		{"docs at <https://example.com/doc|the doc>", "docs at the doc"},
		{"raw link <https://example.com>", "raw link https://example.com"},
		{"a &amp; b &lt;ok&gt;", "a & b <ok>"},
	}
	for _, tc := range cases {
		if got := cleanMarkup(tc.in); got != tc.want {
			t.Errorf("cleanMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTimeframeLabel(t *testing.T) {
	cases := []struct {
		hours int
		want  string
	}{
		{domain.TimeframeUnread, "unread messages"},
		{domain.TimeframeThread, "thread"},
		{6, "last 6 hours"},
		{24, "last 24 hours"},
		{48, "last 2 days"},
		{168, "last week"},
		{336, "last 2 weeks"},
	}
	for _, tc := range cases {
		if got := timeframeLabel(tc.hours); got != tc.want {
			t.Errorf("timeframeLabel(%d) = %q, want %q", tc.hours, got, tc.want)
		}
	}
}

func TestSummarizerEmptyInputFallbacks(t *testing.T) {
	s := NewGeminiSummarizer(nil, conf.DefaultPromptsConfig())
	ctx := context.Background()

	out, err := s.Summarize(ctx, nil, "general", 24)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "#general") || !strings.Contains(out, "quiet") {
		t.Errorf("empty channel summary = %q", out)
	}

	out, err = s.SummarizeUnread(ctx, nil, "general", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "caught up") {
		t.Errorf("empty unread summary = %q", out)
	}

	vip := &domain.VIPUser{Username: "alice", DisplayName: "Alice"}
	out, err = s.SummarizeVIPChannel(ctx, vip, "general", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Alice") {
		t.Errorf("empty vip summary = %q", out)
	}
}

func TestSummarizerWithoutBackendDegrades(t *testing.T) {
	s := NewGeminiSummarizer(nil, conf.DefaultPromptsConfig())

	out, err := s.Summarize(context.Background(), []domain.Message{
		{Ts: "1715112000.000200", User: "U1", Text: "hello"},
	}, "general", 24)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Summary Report") {
		t.Errorf("degraded summary lost its header: %q", out)
	}
	if !strings.Contains(out, "couldn't generate") {
		t.Errorf("degraded summary = %q, want apology body", out)
	}

	if _, err := s.FollowUp(context.Background(), "what?", "summary", "general"); err == nil {
		t.Error("follow-up without a backend should error so callers can fall back")
	}
}
