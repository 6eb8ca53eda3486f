package domain

import "time"

// Intent is the recognized purpose of a natural-language message.
type Intent string

const (
	IntentSummaryRequest Intent = "summary_request"
	IntentHelpRequest    Intent = "help_request"
	IntentGreeting       Intent = "greeting"
	IntentStatusCheck    Intent = "status_check"
	IntentGeneralChat    Intent = "general_chat"
)

// IntentParams are the parameters extracted alongside an intent.
type IntentParams struct {
	ChannelName    string `json:"channel_name,omitempty"`
	TimeframeHours int    `json:"timeframe_hours,omitempty"`
	TimeframeText  string `json:"timeframe_text,omitempty"`
	Reasoning      string `json:"reasoning,omitempty"`
}

// Classification is the outcome of intent classification.
type Classification struct {
	Intent     Intent
	Confidence float64
	Params     IntentParams
}

// Interaction is one logged natural-language exchange. This log is
// separate from the command ledger, which only tracks structured commands.
type Interaction struct {
	ID                string
	UserID            string
	ChannelID         string
	MessageType       string // "natural_language", "followup"
	UserMessage       string
	BotResponse       string
	Intent            string
	Confidence        float64
	ProcessingSeconds float64
	Parameters        string // JSON-encoded IntentParams
	CreatedAt         time.Time
}
