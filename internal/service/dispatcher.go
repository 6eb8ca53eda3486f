package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
	"github.com/summarybot/summarybot/internal/biz/usecase"
)

// Command is an inbound structured command from the platform.
type Command struct {
	Name      string // "/summary", "/vip"
	Text      string
	UserID    string
	ChannelID string
}

// Event is an inbound free-form message event.
type Event struct {
	UserID          string
	ChannelID       string
	Text            string
	MentionsBot     bool
	IsDirectMessage bool
}

// Options wires the dispatcher's collaborators.
type Options struct {
	Platform     repo.PlatformClient
	Summarizer   repo.Summarizer
	Classifier   repo.IntentClassifier
	Fetch        *usecase.FetchUsecase
	Contexts     *usecase.ContextUsecase
	Ledger       *usecase.LedgerUsecase
	VIPs         *usecase.VIPUsecase
	Responder    *usecase.Responder
	Summaries    repo.SummaryRepo
	ReadStatus   repo.ReadStatusRepo
	Interactions repo.InteractionRepo

	BotUserID     string
	WorkspaceID   string
	WorkspaceName string
	DefaultHours  int
}

// Dispatcher routes structured commands and natural-language events to the
// retrieval pipeline, the summarizer and the VIP directory. Every command
// branch finalizes its ledger record and delivers exactly one result
// message after the initial acknowledgment.
type Dispatcher struct {
	platform     repo.PlatformClient
	summarizer   repo.Summarizer
	classifier   repo.IntentClassifier
	fetch        *usecase.FetchUsecase
	contexts     *usecase.ContextUsecase
	ledger       *usecase.LedgerUsecase
	vips         *usecase.VIPUsecase
	responder    *usecase.Responder
	summaries    repo.SummaryRepo
	reads        repo.ReadStatusRepo
	interactions repo.InteractionRepo

	botUserID     string
	workspaceID   string
	workspaceName string
	defaultHours  int
	now           func() time.Time
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(opts Options) *Dispatcher {
	defaultHours := opts.DefaultHours
	if defaultHours <= 0 {
		defaultHours = 24
	}
	workspaceID := opts.WorkspaceID
	if workspaceID == "" {
		workspaceID = "default"
	}
	return &Dispatcher{
		platform:      opts.Platform,
		summarizer:    opts.Summarizer,
		classifier:    opts.Classifier,
		fetch:         opts.Fetch,
		contexts:      opts.Contexts,
		ledger:        opts.Ledger,
		vips:          opts.VIPs,
		responder:     opts.Responder,
		summaries:     opts.Summaries,
		reads:         opts.ReadStatus,
		interactions:  opts.Interactions,
		botUserID:     opts.BotUserID,
		workspaceID:   workspaceID,
		workspaceName: opts.WorkspaceName,
		defaultHours:  defaultHours,
		now:           time.Now,
	}
}

// HandleCommand processes one structured command end to end. The initiated
// ledger record is written synchronously before any work; a panic on any
// path finalizes the record as failed and apologizes to the user.
func (d *Dispatcher) HandleCommand(ctx context.Context, cmd *Command) {
	start := d.now()
	rec := d.ledger.Begin(ctx, cmd.Name, cmd.UserID, cmd.ChannelID, cmd.Text)

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Dispatcher] panic in %s: %v\n", cmd.Name, r)
			d.ledger.Fail(ctx, rec, fmt.Sprintf("internal error: %v", r), start)
			d.send(ctx, cmd.ChannelID, cmd.UserID, "😵 Something went wrong on my end. Please try again.")
		}
	}()

	switch cmd.Name {
	case "/summary":
		d.handleSummary(ctx, cmd, rec, start)
	case "/vip":
		d.handleVIP(ctx, cmd, rec, start)
	default:
		d.ledger.Fail(ctx, rec, fmt.Sprintf("unknown command %q", cmd.Name), start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("❓ I don't know the command %s.", cmd.Name))
	}
}

func (d *Dispatcher) handleSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, start time.Time) {
	parsed := usecase.ParseSummaryCommand(cmd.Text)
	if parsed.Kind == domain.CommandInvalid {
		d.ledger.Fail(ctx, rec, parsed.Reason, start)
		d.send(ctx, cmd.ChannelID, cmd.UserID,
			"❌ I couldn't understand that. Try `/summary`, `/summary #channel`, `/summary unread`, `/summary thread latest` or `/summary vip @user`.")
		return
	}

	// Acknowledge before the retrieval loop; pagination can take a while.
	d.send(ctx, cmd.ChannelID, cmd.UserID, "Your summary is getting generated ⏳")

	switch parsed.Kind {
	case domain.CommandPlainChannel:
		d.runChannelSummary(ctx, cmd, rec, parsed.Channel, start)
	case domain.CommandUnread:
		d.runUnreadSummary(ctx, cmd, rec, parsed.Channel, start)
	case domain.CommandThreadLatest:
		d.runLatestThreadSummary(ctx, cmd, rec, parsed.Channel, start)
	case domain.CommandThreadSpecific:
		d.runSpecificThreadSummary(ctx, cmd, rec, parsed, start)
	case domain.CommandVIPDM:
		d.runVIPDMSummary(ctx, cmd, rec, parsed.Username, start)
	case domain.CommandVIPChannel:
		d.runVIPChannelSummary(ctx, cmd, rec, parsed, start)
	}
}

func (d *Dispatcher) runChannelSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, channelName string, start time.Time) {
	channel, ok := d.resolveChannel(ctx, cmd, rec, channelName, start)
	if !ok {
		return
	}

	d.ledger.MarkProcessing(ctx, rec)
	messages, _ := d.fetch.FetchRolling(ctx, channel.ID, d.defaultHours, false)

	summary, err := d.summarizer.Summarize(ctx, messages, channel.Name, d.defaultHours)
	if err != nil {
		d.failSummary(ctx, cmd, rec, err, start)
		return
	}

	d.persistSummary(ctx, channel, summary, len(messages), usecase.HoursToTimeframeText(d.defaultHours), d.defaultHours, cmd.UserID)
	d.saveSummaryContext(ctx, cmd, channel.Name, summary, len(messages), d.defaultHours, "channel")
	d.send(ctx, cmd.ChannelID, cmd.UserID, summary)
	d.ledger.Complete(ctx, rec, start)
}

func (d *Dispatcher) runUnreadSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, channelName string, start time.Time) {
	channel, ok := d.resolveChannel(ctx, cmd, rec, channelName, start)
	if !ok {
		return
	}

	d.ledger.MarkProcessing(ctx, rec)

	lastRead := ""
	if rs, err := d.reads.Get(ctx, cmd.UserID, channel.ID); err != nil {
		fmt.Printf("[Dispatcher] read status for %s/%s: %v\n", cmd.UserID, channel.ID, err)
	} else if rs != nil {
		lastRead = rs.LastReadTs
	}

	// No stored read status means everything counts as unread.
	messages, total := d.fetch.FetchSince(ctx, channel.ID, lastRead, cmd.UserID)

	summary, err := d.summarizer.SummarizeUnread(ctx, messages, channel.Name, total)
	if err != nil {
		d.failSummary(ctx, cmd, rec, err, start)
		return
	}

	d.persistSummary(ctx, channel, summary, len(messages), fmt.Sprintf("Unread messages (%d total)", total), domain.TimeframeUnread, cmd.UserID)
	d.saveSummaryContext(ctx, cmd, channel.Name, summary, len(messages), domain.TimeframeUnread, "unread")
	d.send(ctx, cmd.ChannelID, cmd.UserID, summary)

	// Stamp wall-clock time rather than the newest summarized ts;
	// messages arriving between fetch and stamp count as read.
	now := d.now()
	if err := d.reads.Upsert(ctx, &domain.ReadStatus{
		UserID:     cmd.UserID,
		ChannelID:  channel.ID,
		LastReadTs: fmt.Sprintf("%d.000000", now.Unix()),
		UpdatedAt:  now,
	}); err != nil {
		fmt.Printf("[Dispatcher] stamp read status for %s/%s: %v\n", cmd.UserID, channel.ID, err)
	}

	d.ledger.Complete(ctx, rec, start)
}

func (d *Dispatcher) runLatestThreadSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, channelName string, start time.Time) {
	channel, ok := d.resolveChannel(ctx, cmd, rec, channelName, start)
	if !ok {
		return
	}

	d.ledger.MarkProcessing(ctx, rec)

	parentTs := d.fetch.LatestThreadTs(ctx, channel.ID)
	if parentTs == "" {
		d.ledger.Fail(ctx, rec, "no recent threads", start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("🔍 No recent threads found in #%s.", channel.Name))
		return
	}

	d.runThreadSummary(ctx, cmd, rec, channel, parentTs, start)
}

func (d *Dispatcher) runSpecificThreadSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, parsed domain.ParsedCommand, start time.Time) {
	channel := &repo.ChannelInfo{ID: parsed.LinkChannelID, Name: "unknown-channel"}
	if info, err := d.platform.GetChannelInfo(ctx, parsed.LinkChannelID); err == nil {
		channel = info
	} else {
		fmt.Printf("[Dispatcher] channel info %s: %v\n", parsed.LinkChannelID, err)
	}

	d.ledger.MarkProcessing(ctx, rec)
	d.runThreadSummary(ctx, cmd, rec, channel, parsed.LinkTs, start)
}

func (d *Dispatcher) runThreadSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, channel *repo.ChannelInfo, parentTs string, start time.Time) {
	messages, raw := d.fetch.FetchThread(ctx, channel.ID, parentTs)
	if raw <= 1 {
		d.ledger.Fail(ctx, rec, "message has no thread replies", start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, "🔍 That message doesn't have any thread replies to summarize.")
		return
	}

	summary, err := d.summarizer.SummarizeThread(ctx, messages, channel.Name)
	if err != nil {
		d.failSummary(ctx, cmd, rec, err, start)
		return
	}

	d.persistSummary(ctx, channel, summary, len(messages), fmt.Sprintf("Thread in #%s", channel.Name), domain.TimeframeThread, cmd.UserID)
	d.saveSummaryContext(ctx, cmd, channel.Name, summary, len(messages), domain.TimeframeThread, "thread")
	d.send(ctx, cmd.ChannelID, cmd.UserID, summary)
	d.ledger.Complete(ctx, rec, start)
}

func (d *Dispatcher) runVIPDMSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, username string, start time.Time) {
	vip, ok := d.resolveVIP(ctx, cmd, rec, username, start)
	if !ok {
		return
	}

	d.ledger.MarkProcessing(ctx, rec)

	var messages []domain.Message
	dmChannel, err := d.platform.OpenDirectMessage(ctx, vip.UserID)
	if err != nil {
		fmt.Printf("[Dispatcher] open dm with %s: %v\n", vip.UserID, err)
	} else {
		messages, _ = d.fetch.FetchRolling(ctx, dmChannel, d.defaultHours, true)
	}

	summary, err := d.summarizer.SummarizeVIPDM(ctx, vip, messages)
	if err != nil {
		d.failSummary(ctx, cmd, rec, err, start)
		return
	}

	d.vips.RecordSummary(ctx, &domain.VIPSummaryRecord{
		ID:             uuid.NewString(),
		VIPUserID:      vip.UserID,
		SummaryType:    domain.VIPSummaryDM,
		Content:        summary,
		RequestedBy:    cmd.UserID,
		MessageCount:   len(messages),
		TimeframeHours: d.defaultHours,
	})
	d.send(ctx, cmd.ChannelID, cmd.UserID, summary)
	d.ledger.Complete(ctx, rec, start)
}

func (d *Dispatcher) runVIPChannelSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, parsed domain.ParsedCommand, start time.Time) {
	vip, ok := d.resolveVIP(ctx, cmd, rec, parsed.Username, start)
	if !ok {
		return
	}
	channel, ok := d.resolveChannel(ctx, cmd, rec, parsed.Channel, start)
	if !ok {
		return
	}

	d.ledger.MarkProcessing(ctx, rec)

	// The scope resolver needs ascending order.
	messages, _ := d.fetch.FetchRolling(ctx, channel.ID, d.defaultHours, true)
	scoped := usecase.ScopeToVIP(vip.UserID, messages)

	summary, err := d.summarizer.SummarizeVIPChannel(ctx, vip, channel.Name, scoped)
	if err != nil {
		d.failSummary(ctx, cmd, rec, err, start)
		return
	}

	d.vips.RecordSummary(ctx, &domain.VIPSummaryRecord{
		ID:             uuid.NewString(),
		VIPUserID:      vip.UserID,
		SummaryType:    domain.VIPSummaryChannel,
		ChannelID:      channel.ID,
		ChannelName:    channel.Name,
		Content:        summary,
		RequestedBy:    cmd.UserID,
		MessageCount:   len(scoped),
		TimeframeHours: d.defaultHours,
	})
	d.send(ctx, cmd.ChannelID, cmd.UserID, summary)
	d.ledger.Complete(ctx, rec, start)
}

var userRefRe = regexp.MustCompile(`^<@([A-Z0-9]+)(?:\|[^>]*)?>$`)

func (d *Dispatcher) handleVIP(ctx context.Context, cmd *Command, rec *domain.CommandRecord, start time.Time) {
	fields := strings.Fields(cmd.Text)
	if len(fields) == 0 {
		d.send(ctx, cmd.ChannelID, cmd.UserID, d.responder.VIPHelp())
		d.ledger.Complete(ctx, rec, start)
		return
	}

	switch strings.ToLower(fields[0]) {
	case "add", "remove":
		if len(fields) < 2 {
			d.ledger.Fail(ctx, rec, "missing user argument", start)
			d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("❌ Who? Try `/vip %s @user`.", strings.ToLower(fields[0])))
			return
		}
		targetID, ok := d.resolveUserRef(ctx, fields[1])
		if !ok {
			d.ledger.Fail(ctx, rec, fmt.Sprintf("user %q not found", fields[1]), start)
			d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("❌ I couldn't find the user %s.", fields[1]))
			return
		}
		if strings.ToLower(fields[0]) == "add" {
			d.vipAdd(ctx, cmd, rec, targetID, start)
		} else {
			d.vipRemove(ctx, cmd, rec, targetID, start)
		}
	case "list":
		d.vipList(ctx, cmd, rec, start)
	default:
		d.send(ctx, cmd.ChannelID, cmd.UserID, d.responder.VIPHelp())
		d.ledger.Complete(ctx, rec, start)
	}
}

func (d *Dispatcher) vipAdd(ctx context.Context, cmd *Command, rec *domain.CommandRecord, targetID string, start time.Time) {
	vip, err := d.vips.Add(ctx, targetID, cmd.UserID)
	if err != nil {
		d.ledger.Fail(ctx, rec, err.Error(), start)
		switch err {
		case usecase.ErrSelfVIP:
			d.send(ctx, cmd.ChannelID, cmd.UserID, "❌ You can't add yourself as a VIP.")
		case usecase.ErrAlreadyVIP:
			d.send(ctx, cmd.ChannelID, cmd.UserID, "ℹ️ They're already in your VIP list.")
		case usecase.ErrUserNotFound:
			d.send(ctx, cmd.ChannelID, cmd.UserID, "❌ I couldn't find that user.")
		default:
			d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't update your VIP list. Please try again.")
		}
		return
	}
	d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("⭐ Added *%s* to your VIP list!", vip.Label()))
	d.ledger.Complete(ctx, rec, start)
}

func (d *Dispatcher) vipRemove(ctx context.Context, cmd *Command, rec *domain.CommandRecord, targetID string, start time.Time) {
	vip, err := d.vips.Remove(ctx, targetID, cmd.UserID)
	if err != nil {
		d.ledger.Fail(ctx, rec, err.Error(), start)
		if err == usecase.ErrNotVIP {
			d.send(ctx, cmd.ChannelID, cmd.UserID, "ℹ️ They're not in your VIP list.")
		} else {
			d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't update your VIP list. Please try again.")
		}
		return
	}
	d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("👋 Removed *%s* from your VIP list.", vip.Label()))
	d.ledger.Complete(ctx, rec, start)
}

func (d *Dispatcher) vipList(ctx context.Context, cmd *Command, rec *domain.CommandRecord, start time.Time) {
	vips, err := d.vips.List(ctx, cmd.UserID)
	if err != nil {
		d.ledger.Fail(ctx, rec, err.Error(), start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't read your VIP list. Please try again.")
		return
	}
	if len(vips) == 0 {
		d.send(ctx, cmd.ChannelID, cmd.UserID, "⭐ Your VIP list is empty. Add someone with `/vip add @user`.")
		d.ledger.Complete(ctx, rec, start)
		return
	}
	var b strings.Builder
	b.WriteString("⭐ *Your VIPs:*\n")
	for _, vip := range vips {
		fmt.Fprintf(&b, "• %s (@%s)\n", vip.Label(), vip.Username)
	}
	d.send(ctx, cmd.ChannelID, cmd.UserID, strings.TrimRight(b.String(), "\n"))
	d.ledger.Complete(ctx, rec, start)
}

// HandleEvent processes a free-form message. Mentions and direct messages
// go through intent classification; other channel messages are only
// answered when they look like a follow-up to a usable context. Returns
// whether the event produced a response.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev *Event) bool {
	text := strings.TrimSpace(strings.ReplaceAll(ev.Text, domain.MentionToken(d.botUserID), ""))

	if ev.MentionsBot || ev.IsDirectMessage {
		d.handleNaturalLanguage(ctx, ev, text)
		return true
	}

	active, err := d.contexts.Active(ctx, ev.UserID, ev.ChannelID)
	if err != nil {
		fmt.Printf("[Dispatcher] context lookup for %s/%s: %v\n", ev.UserID, ev.ChannelID, err)
		return false
	}
	if active == nil || !d.contexts.IsFollowupQuestion(text) {
		return false
	}
	d.handleFollowup(ctx, ev, active, text)
	return true
}

func (d *Dispatcher) handleNaturalLanguage(ctx context.Context, ev *Event, text string) {
	start := d.now()

	cls, err := d.classifier.Classify(ctx, text, ev.UserID)
	if err != nil {
		fmt.Printf("[Dispatcher] classify: %v\n", err)
		cls = &domain.Classification{Intent: domain.IntentGeneralChat, Confidence: 0}
	}

	var response string
	switch cls.Intent {
	case domain.IntentSummaryRequest:
		response = d.runNaturalSummary(ctx, ev, cls)
	case domain.IntentHelpRequest:
		response = d.responder.Help()
		d.send(ctx, ev.ChannelID, ev.UserID, response)
	case domain.IntentGreeting:
		response = d.responder.Greeting()
		d.send(ctx, ev.ChannelID, ev.UserID, response)
	case domain.IntentStatusCheck:
		response = d.responder.Status()
		d.send(ctx, ev.ChannelID, ev.UserID, response)
	default:
		response = d.responder.GeneralChat()
		d.send(ctx, ev.ChannelID, ev.UserID, response)
		if err := d.contexts.SaveChatContext(ctx, ev.UserID, ev.ChannelID, text, response); err != nil {
			fmt.Printf("[Dispatcher] save chat context: %v\n", err)
		}
	}

	d.logInteraction(ctx, ev, "natural_language", text, response, cls, d.now().Sub(start).Seconds())
}

func (d *Dispatcher) runNaturalSummary(ctx context.Context, ev *Event, cls *domain.Classification) string {
	hours := cls.Params.TimeframeHours
	if hours <= 0 {
		hours = d.defaultHours
	}

	var channel *repo.ChannelInfo
	var err error
	if cls.Params.ChannelName != "" {
		channel, err = d.platform.GetChannelInfoByName(ctx, cls.Params.ChannelName)
		if err == nil && channel == nil {
			msg := fmt.Sprintf("❌ I couldn't find a channel called #%s.", cls.Params.ChannelName)
			d.send(ctx, ev.ChannelID, ev.UserID, msg)
			return msg
		}
	} else {
		channel, err = d.platform.GetChannelInfo(ctx, ev.ChannelID)
	}
	if err != nil {
		fmt.Printf("[Dispatcher] resolve channel for natural summary: %v\n", err)
		msg := "⚠️ I couldn't look up that channel. Please try again."
		d.send(ctx, ev.ChannelID, ev.UserID, msg)
		return msg
	}

	d.send(ctx, ev.ChannelID, ev.UserID, "Your summary is getting generated ⏳")

	messages, _ := d.fetch.FetchRolling(ctx, channel.ID, hours, false)
	summary, err := d.summarizer.Summarize(ctx, messages, channel.Name, hours)
	if err != nil {
		fmt.Printf("[Dispatcher] natural summary: %v\n", err)
		summary = "⚠️ I couldn't generate that summary. Please try again."
	}

	d.persistSummary(ctx, channel, summary, len(messages), usecase.HoursToTimeframeText(hours), hours, ev.UserID)
	d.saveSummaryContext(ctx, &Command{UserID: ev.UserID, ChannelID: ev.ChannelID}, channel.Name, summary, len(messages), hours, "channel")
	d.send(ctx, ev.ChannelID, ev.UserID, summary)
	return summary
}

func (d *Dispatcher) handleFollowup(ctx context.Context, ev *Event, active *domain.ConversationContext, text string) {
	start := d.now()
	var response string

	switch active.ContextType {
	case domain.ContextSummary:
		data, err := active.SummaryData()
		if err != nil {
			fmt.Printf("[Dispatcher] decode summary context: %v\n", err)
			response = d.responder.SummaryFollowUpFallback(text, "")
			break
		}
		response, err = d.summarizer.FollowUp(ctx, text, data.Summary, data.ChannelName)
		if err != nil {
			fmt.Printf("[Dispatcher] follow-up generation: %v\n", err)
			response = d.responder.SummaryFollowUpFallback(text, data.ChannelName)
		}
	case domain.ContextChat:
		response = d.responder.ChatFollowUp()
	default:
		response = d.responder.GeneralChat()
	}

	d.send(ctx, ev.ChannelID, ev.UserID, response)
	if err := d.contexts.Touch(ctx, active); err != nil {
		fmt.Printf("[Dispatcher] touch context: %v\n", err)
	}
	d.logInteraction(ctx, ev, "followup", text, response, nil, d.now().Sub(start).Seconds())
}

// resolveChannel resolves the target channel or finalizes the record as a
// user input failure. An empty name means the channel the command was
// issued in.
func (d *Dispatcher) resolveChannel(ctx context.Context, cmd *Command, rec *domain.CommandRecord, name string, start time.Time) (*repo.ChannelInfo, bool) {
	if name == "" {
		channel, err := d.platform.GetChannelInfo(ctx, cmd.ChannelID)
		if err != nil {
			d.ledger.Fail(ctx, rec, fmt.Sprintf("channel info: %v", err), start)
			d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't look up this channel. Please try again.")
			return nil, false
		}
		return channel, true
	}

	channel, err := d.platform.GetChannelInfoByName(ctx, name)
	if err != nil {
		d.ledger.Fail(ctx, rec, fmt.Sprintf("channel lookup: %v", err), start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't look up that channel. Please try again.")
		return nil, false
	}
	if channel == nil {
		d.ledger.Fail(ctx, rec, fmt.Sprintf("channel %q not found", name), start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("❌ I couldn't find a channel called #%s.", name))
		return nil, false
	}
	return channel, true
}

// resolveVIP resolves an active VIP or finalizes the record. A two-token
// command whose first token is not a VIP fails here; it is never re-read
// as a channel request.
func (d *Dispatcher) resolveVIP(ctx context.Context, cmd *Command, rec *domain.CommandRecord, username string, start time.Time) (*domain.VIPUser, bool) {
	vip, err := d.vips.FindByUsername(ctx, username, cmd.UserID)
	if err != nil {
		d.ledger.Fail(ctx, rec, fmt.Sprintf("vip lookup: %v", err), start)
		d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't read your VIP list. Please try again.")
		return nil, false
	}
	if vip == nil {
		d.ledger.Fail(ctx, rec, fmt.Sprintf("%q is not a vip", username), start)
		d.send(ctx, cmd.ChannelID, cmd.UserID,
			fmt.Sprintf("❌ *%s* is not in your VIP list. Add them with `/vip add @%s`.", username, strings.TrimPrefix(username, "@")))
		return nil, false
	}
	return vip, true
}

// resolveUserRef turns a "<@U123>" mention token or a plain username into
// a user ID.
func (d *Dispatcher) resolveUserRef(ctx context.Context, ref string) (string, bool) {
	if m := userRefRe.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	info, err := d.platform.SearchUserByName(ctx, strings.TrimPrefix(ref, "@"))
	if err != nil {
		fmt.Printf("[Dispatcher] search user %q: %v\n", ref, err)
		return "", false
	}
	if info == nil {
		return "", false
	}
	return info.ID, true
}

func (d *Dispatcher) failSummary(ctx context.Context, cmd *Command, rec *domain.CommandRecord, err error, start time.Time) {
	fmt.Printf("[Dispatcher] summary generation: %v\n", err)
	d.ledger.Fail(ctx, rec, err.Error(), start)
	d.send(ctx, cmd.ChannelID, cmd.UserID, "⚠️ I couldn't generate that summary. Please try again.")
}

func (d *Dispatcher) persistSummary(ctx context.Context, channel *repo.ChannelInfo, text string, count int, label string, hours int, userID string) {
	ws, err := d.summaries.GetOrCreateWorkspace(ctx, d.workspaceID, d.workspaceName)
	if err != nil {
		fmt.Printf("[Dispatcher] workspace record: %v\n", err)
		return
	}
	ch, err := d.summaries.GetOrCreateChannel(ctx, ws.ID, channel.ID, channel.Name, channel.IsPrivate)
	if err != nil {
		fmt.Printf("[Dispatcher] channel record: %v\n", err)
		return
	}
	if err := d.summaries.Create(ctx, &domain.Summary{
		ChannelRef:     ch.ID,
		SummaryText:    text,
		MessageCount:   count,
		Timeframe:      label,
		TimeframeHours: hours,
		RequestedBy:    userID,
		CreatedAt:      d.now(),
	}); err != nil {
		fmt.Printf("[Dispatcher] persist summary: %v\n", err)
	}
}

func (d *Dispatcher) saveSummaryContext(ctx context.Context, cmd *Command, channelName, summary string, count, hours int, summaryType string) {
	if err := d.contexts.SaveSummaryContext(ctx, cmd.UserID, cmd.ChannelID, domain.SummaryContextData{
		ChannelName:    channelName,
		Summary:        summary,
		MessageCount:   count,
		TimeframeHours: hours,
		SummaryType:    summaryType,
	}); err != nil {
		fmt.Printf("[Dispatcher] save summary context: %v\n", err)
	}
}

func (d *Dispatcher) logInteraction(ctx context.Context, ev *Event, messageType, userMessage, response string, cls *domain.Classification, seconds float64) {
	it := &domain.Interaction{
		ID:                uuid.NewString(),
		UserID:            ev.UserID,
		ChannelID:         ev.ChannelID,
		MessageType:       messageType,
		UserMessage:       userMessage,
		BotResponse:       response,
		ProcessingSeconds: seconds,
		CreatedAt:         d.now(),
	}
	if cls != nil {
		it.Intent = string(cls.Intent)
		it.Confidence = cls.Confidence
		if params, err := json.Marshal(cls.Params); err == nil {
			it.Parameters = string(params)
		}
	}
	if err := d.interactions.Create(ctx, it); err != nil {
		fmt.Printf("[Dispatcher] log interaction: %v\n", err)
	}
}

// send posts a reply addressed to the requesting user. Delivery failures
// are logged; there is nothing else to do with them.
func (d *Dispatcher) send(ctx context.Context, channelID, userID, text string) {
	if userID != "" {
		text = domain.MentionToken(userID) + " " + text
	}
	if err := d.platform.SendMessage(ctx, channelID, text); err != nil {
		fmt.Printf("[Dispatcher] send to %s: %v\n", channelID, err)
	}
}
