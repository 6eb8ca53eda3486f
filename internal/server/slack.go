package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/service"
)

// CommandHandler processes inbound commands and events.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd *service.Command)
	HandleEvent(ctx context.Context, ev *service.Event) bool
}

// SlackServer receives Slack slash commands and Events API callbacks over
// HTTP and hands them to the dispatcher. Slack expects an HTTP response
// within three seconds, so processing happens on a goroutine after the
// request is acknowledged.
type SlackServer struct {
	handler   CommandHandler
	botUserID string
	port      int
	server    *http.Server

	// Events API retries deliveries; processed event IDs are cached.
	seenMu sync.Mutex
	seen   map[string]time.Time
}

// NewSlackServer creates a new Slack intake server.
func NewSlackServer(handler CommandHandler, botUserID string, port int) *SlackServer {
	return &SlackServer{
		handler:   handler,
		botUserID: botUserID,
		port:      port,
		seen:      make(map[string]time.Time),
	}
}

// Handler returns the HTTP handler, for Start and for tests.
func (s *SlackServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slack/commands", s.handleCommand)
	mux.HandleFunc("/slack/events", s.handleEvent)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Start starts the HTTP server. Blocks until the server stops.
func (s *SlackServer) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}
	fmt.Printf("[Server] Listening for Slack events on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *SlackServer) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

func (s *SlackServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := &service.Command{
		Name:      r.FormValue("command"),
		Text:      strings.TrimSpace(r.FormValue("text")),
		UserID:    r.FormValue("user_id"),
		ChannelID: r.FormValue("channel_id"),
	}
	if cmd.Name == "" || cmd.UserID == "" || cmd.ChannelID == "" {
		http.Error(w, "command, user_id and channel_id are required", http.StatusBadRequest)
		return
	}

	fmt.Printf("[Server] Command %s from %s in %s: %s\n", cmd.Name, cmd.UserID, cmd.ChannelID, truncate(cmd.Text, 50))
	go s.handler.HandleCommand(context.Background(), cmd)

	// All replies go through chat.postMessage; the slash response stays empty.
	w.WriteHeader(http.StatusOK)
}

type eventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	EventID   string `json:"event_id"`
	Event     struct {
		Type        string `json:"type"`
		User        string `json:"user"`
		Channel     string `json:"channel"`
		Text        string `json:"text"`
		ChannelType string `json:"channel_type"`
		BotID       string `json:"bot_id"`
		Subtype     string `json:"subtype"`
	} `json:"event"`
}

func (s *SlackServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var envelope eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case "url_verification":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"challenge": envelope.Challenge})
		return
	case "event_callback":
		// handled below
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	if envelope.EventID != "" && s.isEventSeen(envelope.EventID) {
		fmt.Printf("[Server] Duplicate event ignored: %s\n", envelope.EventID)
		w.WriteHeader(http.StatusOK)
		return
	}
	s.markEventSeen(envelope.EventID)

	ev := envelope.Event
	if ev.BotID != "" || ev.User == "" || ev.User == s.botUserID || ev.Subtype != "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if ev.Type != "app_mention" && ev.Type != "message" {
		w.WriteHeader(http.StatusOK)
		return
	}

	mentionsBot := ev.Type == "app_mention" ||
		(s.botUserID != "" && strings.Contains(ev.Text, domain.MentionToken(s.botUserID)))

	fmt.Printf("[Server] Event %s from %s in %s: %s\n", ev.Type, ev.User, ev.Channel, truncate(ev.Text, 50))
	go s.handler.HandleEvent(context.Background(), &service.Event{
		UserID:          ev.User,
		ChannelID:       ev.Channel,
		Text:            ev.Text,
		MentionsBot:     mentionsBot,
		IsDirectMessage: ev.ChannelType == "im",
	})

	w.WriteHeader(http.StatusOK)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isEventSeen checks if an event has been processed.
func (s *SlackServer) isEventSeen(eventID string) bool {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	_, exists := s.seen[eventID]
	return exists
}

// markEventSeen marks an event as processed and drops records older than
// five minutes.
func (s *SlackServer) markEventSeen(eventID string) {
	if eventID == "" {
		return
	}
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	s.seen[eventID] = time.Now()

	cutoff := time.Now().Add(-5 * time.Minute)
	for id, ts := range s.seen {
		if ts.Before(cutoff) {
			delete(s.seen, id)
		}
	}
}
