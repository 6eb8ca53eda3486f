package usecase

import (
	"testing"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

func TestParseEmptyTextMeansCurrentChannel(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		cmd := ParseSummaryCommand(raw)
		if cmd.Kind != domain.CommandPlainChannel {
			t.Errorf("parse(%q): kind = %q, want plain_channel", raw, cmd.Kind)
		}
		if cmd.Channel != "" {
			t.Errorf("parse(%q): channel = %q, want empty (current channel)", raw, cmd.Channel)
		}
	}
}

func TestParseSingleToken(t *testing.T) {
	cmd := ParseSummaryCommand("#general")
	if cmd.Kind != domain.CommandPlainChannel || cmd.Channel != "general" {
		t.Errorf("parse(#general) = %+v, want plain_channel general", cmd)
	}

	cmd = ParseSummaryCommand("random")
	if cmd.Kind != domain.CommandPlainChannel || cmd.Channel != "random" {
		t.Errorf("parse(random) = %+v, want plain_channel random", cmd)
	}
}

func TestParseUnread(t *testing.T) {
	cmd := ParseSummaryCommand("unread")
	if cmd.Kind != domain.CommandUnread || cmd.Channel != "" {
		t.Errorf("parse(unread) = %+v, want unread in current channel", cmd)
	}

	cmd = ParseSummaryCommand("unread #general")
	if cmd.Kind != domain.CommandUnread || cmd.Channel != "general" {
		t.Errorf("parse(unread #general) = %+v, want unread general", cmd)
	}
}

func TestParseThreadLatest(t *testing.T) {
	cmd := ParseSummaryCommand("thread latest")
	if cmd.Kind != domain.CommandThreadLatest || cmd.Channel != "" {
		t.Errorf("parse(thread latest) = %+v, want thread_latest in current channel", cmd)
	}

	cmd = ParseSummaryCommand("thread latest #general")
	if cmd.Kind != domain.CommandThreadLatest || cmd.Channel != "general" {
		t.Errorf("parse(thread latest #general) = %+v, want thread_latest general", cmd)
	}
}

func TestParseThreadLink(t *testing.T) {
	cmd := ParseSummaryCommand("thread https://acme.slack.com/archives/C024BE91L/p1715112000000200")
	if cmd.Kind != domain.CommandThreadSpecific {
		t.Fatalf("kind = %q, want thread_specific", cmd.Kind)
	}
	if cmd.LinkChannelID != "C024BE91L" {
		t.Errorf("link channel = %q, want C024BE91L", cmd.LinkChannelID)
	}
	if cmd.LinkTs != "1715112000.000200" {
		t.Errorf("link ts = %q, want 1715112000.000200", cmd.LinkTs)
	}
}

func TestParseThreadBadLinkIsInvalid(t *testing.T) {
	for _, raw := range []string{"thread", "thread not-a-link", "thread https://acme.slack.com/archives/C024BE91L/p123"} {
		cmd := ParseSummaryCommand(raw)
		if cmd.Kind != domain.CommandInvalid {
			t.Errorf("parse(%q): kind = %q, want invalid", raw, cmd.Kind)
		}
		if cmd.Kind == domain.CommandInvalid && cmd.Reason == "" {
			t.Errorf("parse(%q): invalid with empty reason", raw)
		}
	}
}

func TestParseVIPDM(t *testing.T) {
	cmd := ParseSummaryCommand("vip @alice")
	if cmd.Kind != domain.CommandVIPDM || cmd.Username != "alice" {
		t.Errorf("parse(vip @alice) = %+v, want vip_dm alice", cmd)
	}

	cmd = ParseSummaryCommand("vip alice")
	if cmd.Kind != domain.CommandVIPDM || cmd.Username != "alice" {
		t.Errorf("parse(vip alice) = %+v, want vip_dm alice", cmd)
	}
}

// Two bare tokens read as VIP-channel even when the first token is not a
// registered VIP; the dispatcher reports the missing VIP rather than
// reinterpreting the text as a channel name.
func TestParseTwoTokensIsVIPChannel(t *testing.T) {
	cmd := ParseSummaryCommand("@alice #general")
	if cmd.Kind != domain.CommandVIPChannel {
		t.Fatalf("kind = %q, want vip_channel", cmd.Kind)
	}
	if cmd.Username != "alice" || cmd.Channel != "general" {
		t.Errorf("parsed %+v, want alice/general", cmd)
	}
}

func TestParseReservedKeywordNeverReadsAsVIPChannel(t *testing.T) {
	// "thread latest" and "unread general" must hit their own rules.
	if cmd := ParseSummaryCommand("thread latest"); cmd.Kind != domain.CommandThreadLatest {
		t.Errorf("parse(thread latest): kind = %q, want thread_latest", cmd.Kind)
	}
	if cmd := ParseSummaryCommand("unread general"); cmd.Kind != domain.CommandUnread {
		t.Errorf("parse(unread general): kind = %q, want unread", cmd.Kind)
	}

	// A reserved word in second position is not a VIP-channel pair either.
	if cmd := ParseSummaryCommand("foo unread"); cmd.Kind != domain.CommandInvalid {
		t.Errorf("parse(foo unread): kind = %q, want invalid", cmd.Kind)
	}
}

func TestParseThreeTokensIsInvalid(t *testing.T) {
	cmd := ParseSummaryCommand("alice bob carol")
	if cmd.Kind != domain.CommandInvalid {
		t.Errorf("kind = %q, want invalid", cmd.Kind)
	}
}

func TestParseMessageLink(t *testing.T) {
	channelID, ts, ok := ParseMessageLink("https://acme.slack.com/archives/C024BE91L/p1715112000000200")
	if !ok {
		t.Fatal("expected link to parse")
	}
	if channelID != "C024BE91L" || ts != "1715112000.000200" {
		t.Errorf("got (%q, %q)", channelID, ts)
	}

	if _, _, ok := ParseMessageLink("https://acme.slack.com/somewhere/else"); ok {
		t.Error("expected non-archive link to fail")
	}
}
