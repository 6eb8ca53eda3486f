package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/summarybot/summarybot/internal/biz/repo"
)

// Server provides a local diagnostics HTTP API over the command ledger and
// the summary history.
type Server struct {
	ledger    repo.LedgerRepo
	summaries repo.SummaryRepo

	server *http.Server
	port   int
}

// NewServer creates a new diagnostics server.
func NewServer(ledger repo.LedgerRepo, summaries repo.SummaryRepo, port int) *Server {
	return &Server{
		ledger:    ledger,
		summaries: summaries,
		port:      port,
	}
}

// Handler returns the HTTP handler, for Start and for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/commands", s.handleCommands)
	mux.HandleFunc("/api/summaries", s.handleSummaries)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Start starts the HTTP server. The listener binds to loopback only; this
// API is for operators on the host, not the workspace.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.Handler(),
	}
	fmt.Printf("[API] Starting diagnostics server on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// CommandView is the wire form of a ledger record.
type CommandView struct {
	ID               string  `json:"id"`
	Command          string  `json:"command"`
	UserID           string  `json:"user_id"`
	ChannelID        string  `json:"channel_id"`
	Parameters       string  `json:"parameters,omitempty"`
	Status           string  `json:"status"`
	ErrorMessage     string  `json:"error_message,omitempty"`
	ExecutionSeconds float64 `json:"execution_seconds"`
	CreatedAt        string  `json:"created_at"`
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recs, err := s.ledger.Recent(r.Context(), s.limit(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]CommandView, len(recs))
	for i, rec := range recs {
		views[i] = CommandView{
			ID:               rec.ID,
			Command:          rec.Command,
			UserID:           rec.UserID,
			ChannelID:        rec.ChannelID,
			Parameters:       rec.Parameters,
			Status:           string(rec.Status),
			ErrorMessage:     rec.ErrorMessage,
			ExecutionSeconds: rec.ExecutionSeconds,
			CreatedAt:        rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	s.writeJSON(w, map[string]interface{}{"commands": views})
}

// SummaryView is the wire form of a delivered summary.
type SummaryView struct {
	ID             int64  `json:"id"`
	SummaryText    string `json:"summary_text"`
	MessageCount   int    `json:"message_count"`
	Timeframe      string `json:"timeframe"`
	TimeframeHours int    `json:"timeframe_hours"`
	RequestedBy    string `json:"requested_by"`
	CreatedAt      string `json:"created_at"`
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries, err := s.summaries.Recent(r.Context(), s.limit(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]SummaryView, len(summaries))
	for i, sum := range summaries {
		views[i] = SummaryView{
			ID:             sum.ID,
			SummaryText:    sum.SummaryText,
			MessageCount:   sum.MessageCount,
			Timeframe:      sum.Timeframe,
			TimeframeHours: sum.TimeframeHours,
			RequestedBy:    sum.RequestedBy,
			CreatedAt:      sum.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	s.writeJSON(w, map[string]interface{}{"summaries": views})
}

func (s *Server) limit(r *http.Request) int {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
