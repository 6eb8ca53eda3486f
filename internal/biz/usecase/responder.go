package usecase

import (
	"fmt"
	"math/rand"
	"strings"
)

// Responder produces the canned conversational replies: help, greeting,
// status and general chat, plus keyword-routed fallback answers for
// follow-ups when the generator is unavailable.
type Responder struct {
	pick func(n int) int
}

// NewResponder creates a responder with randomized phrasing.
func NewResponder() *Responder {
	return &Responder{pick: rand.Intn}
}

var greetingReplies = []string{
	"Hey there! 👋 Need a summary of any channel? Just ask.",
	"Hello! I'm here to help you catch up. Try asking me to summarize a channel.",
	"Hi! Want a recap of what you missed? I can summarize channels, threads and unread messages.",
}

var generalChatReplies = []string{
	"I'm best at summarizing conversations. Ask me to catch you up on a channel!",
	"Not sure I can help with that, but I can summarize any channel for you.",
	"My specialty is summaries. Try \"summarize #general\" or \"/summary unread\".",
}

// Help returns the command reference.
func (r *Responder) Help() string {
	return strings.TrimSpace(`
📖 *Here's what I can do:*

• ` + "`/summary`" + ` — summarize the current channel (last 24 hours)
• ` + "`/summary #channel`" + ` — summarize a specific channel
• ` + "`/summary unread`" + ` — summarize only your unread messages
• ` + "`/summary thread latest`" + ` — summarize the most recent thread
• ` + "`/summary thread <message link>`" + ` — summarize a specific thread
• ` + "`/summary vip @user`" + ` — summarize your DMs with a VIP
• ` + "`/summary @user #channel`" + ` — summarize a VIP's activity in a channel
• ` + "`/vip add|remove|list`" + ` — manage your VIP list

You can also just talk to me: "catch me up on #general from the last 2 days".
`)
}

// Greeting returns a greeting reply.
func (r *Responder) Greeting() string {
	return greetingReplies[r.pick(len(greetingReplies))]
}

// Status returns a status-check reply.
func (r *Responder) Status() string {
	return "✅ I'm up and running! Ask me for a summary whenever you're ready."
}

// GeneralChat returns a reply for messages outside the bot's competence.
func (r *Responder) GeneralChat() string {
	return generalChatReplies[r.pick(len(generalChatReplies))]
}

// VIPHelp returns the /vip command reference.
func (r *Responder) VIPHelp() string {
	return strings.TrimSpace(`
⭐ *VIP commands:*

• ` + "`/vip add @user`" + ` — add someone to your VIP list
• ` + "`/vip remove @user`" + ` — remove them again
• ` + "`/vip list`" + ` — show your VIPs

Once someone is a VIP you can ask for ` + "`/summary vip @user`" + ` or ` + "`/summary @user #channel`" + `.
`)
}

// SummaryFollowUpFallback answers a follow-up against a delivered summary
// when the generator is unavailable, routed by question keywords.
func (r *Responder) SummaryFollowUpFallback(question, channelName string) string {
	lower := strings.ToLower(question)
	label := channelName
	if label == "" {
		label = "that channel"
	} else {
		label = "#" + label
	}
	switch {
	case strings.Contains(lower, "who"):
		return fmt.Sprintf("The summary above lists the people who were active in %s. Anyone specific you're looking for?", label)
	case strings.Contains(lower, "when"):
		return fmt.Sprintf("The summary covers the timeframe shown in its header for %s. Ask for a different window if you need more.", label)
	case strings.Contains(lower, "more"), strings.Contains(lower, "detail"), strings.Contains(lower, "elaborate"), strings.Contains(lower, "expand"):
		return fmt.Sprintf("For more detail, try a longer timeframe like \"summarize %s for the last 3 days\".", label)
	default:
		return fmt.Sprintf("That's covered in the summary of %s above. You can also request a fresh one with a different timeframe.", label)
	}
}

// ChatFollowUp answers a follow-up to a general chat exchange.
func (r *Responder) ChatFollowUp() string {
	return "We were just chatting! If you'd like, I can summarize a channel for you instead."
}
