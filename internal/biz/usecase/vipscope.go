package usecase

import "github.com/summarybot/summarybot/internal/biz/domain"

// ScopeToVIP narrows an ascending channel message list down to the
// messages relevant to one VIP: messages the VIP authored, messages that
// mention the VIP, and thread replies whose parent is a strictly earlier
// VIP-authored message. The input must already be sorted oldest-first;
// the reply rule only looks backwards, so a parent appearing later in the
// slice never matches.
func ScopeToVIP(vipUserID string, messages []domain.Message) []domain.Message {
	var scoped []domain.Message
	for i, m := range messages {
		switch {
		case m.User == vipUserID:
			scoped = append(scoped, m)
		case m.Mentions(vipUserID):
			scoped = append(scoped, m)
		case repliesToVIP(m, vipUserID, messages[:i]):
			scoped = append(scoped, m)
		}
	}
	return scoped
}

func repliesToVIP(m domain.Message, vipUserID string, earlier []domain.Message) bool {
	if !m.IsThreadReply() {
		return false
	}
	for _, prev := range earlier {
		if prev.Ts == m.ThreadTs && prev.User == vipUserID {
			return true
		}
	}
	return false
}
