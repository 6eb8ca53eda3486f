package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/summarybot/summarybot/internal/biz/domain"
)

// Reserved first-position keywords of the summary command grammar. A
// two-token input only reads as a VIP-channel request when neither token
// is reserved.
var reservedKeywords = map[string]bool{
	"vip":    true,
	"thread": true,
	"unread": true,
}

var messageLinkRe = regexp.MustCompile(`archives/([A-Z0-9]+)/p(\d+)`)

// ParseSummaryCommand resolves the free text of a summary command into a
// ParsedCommand. Matching order: vip prefix, thread prefix, unread prefix,
// bare two-token VIP-channel form, single-token channel, empty text
// meaning the current channel.
//
// The two-token form is deliberately ambiguous: "alice general" is read as
// a VIP-channel request even if alice is not a registered VIP. The
// dispatcher reports the missing VIP instead of guessing a channel.
func ParseSummaryCommand(raw string) domain.ParsedCommand {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return domain.ParsedCommand{Kind: domain.CommandPlainChannel}
	}

	first := strings.ToLower(fields[0])

	if first == "vip" && len(fields) >= 2 {
		return domain.ParsedCommand{
			Kind:     domain.CommandVIPDM,
			Username: strings.TrimPrefix(fields[1], "@"),
		}
	}

	if first == "thread" {
		return parseThreadCommand(fields)
	}

	if first == "unread" {
		cmd := domain.ParsedCommand{Kind: domain.CommandUnread}
		if len(fields) >= 2 {
			cmd.Channel = strings.TrimPrefix(fields[1], "#")
		}
		return cmd
	}

	if len(fields) == 2 {
		second := strings.ToLower(fields[1])
		if !reservedKeywords[first] && !reservedKeywords[second] {
			return domain.ParsedCommand{
				Kind:     domain.CommandVIPChannel,
				Username: strings.TrimPrefix(fields[0], "@"),
				Channel:  strings.TrimPrefix(fields[1], "#"),
			}
		}
		return domain.ParsedCommand{
			Kind:   domain.CommandInvalid,
			Reason: fmt.Sprintf("unrecognized command: %q", strings.Join(fields, " ")),
		}
	}

	if len(fields) == 1 {
		return domain.ParsedCommand{
			Kind:    domain.CommandPlainChannel,
			Channel: strings.TrimPrefix(fields[0], "#"),
		}
	}

	return domain.ParsedCommand{
		Kind:   domain.CommandInvalid,
		Reason: fmt.Sprintf("unrecognized command: %q", strings.Join(fields, " ")),
	}
}

func parseThreadCommand(fields []string) domain.ParsedCommand {
	if len(fields) < 2 {
		return domain.ParsedCommand{
			Kind:   domain.CommandInvalid,
			Reason: "thread command needs 'latest' or a message link",
		}
	}

	if strings.ToLower(fields[1]) == "latest" {
		cmd := domain.ParsedCommand{Kind: domain.CommandThreadLatest}
		if len(fields) >= 3 {
			cmd.Channel = strings.TrimPrefix(fields[2], "#")
		}
		return cmd
	}

	channelID, ts, ok := ParseMessageLink(fields[1])
	if !ok {
		return domain.ParsedCommand{
			Kind:   domain.CommandInvalid,
			Reason: fmt.Sprintf("not a valid message link: %q", fields[1]),
		}
	}
	return domain.ParsedCommand{
		Kind:          domain.CommandThreadSpecific,
		LinkChannelID: channelID,
		LinkTs:        ts,
	}
}

// ParseMessageLink decodes a message permalink of the form
// .../archives/<channelID>/p<digits> into a channel ID and a platform
// timestamp. The permalink drops the timestamp's dot; it sits six digits
// from the end.
func ParseMessageLink(link string) (channelID, ts string, ok bool) {
	m := messageLinkRe.FindStringSubmatch(link)
	if m == nil {
		return "", "", false
	}
	digits := m[2]
	if len(digits) <= 6 {
		return "", "", false
	}
	return m[1], digits[:len(digits)-6] + "." + digits[len(digits)-6:], true
}
