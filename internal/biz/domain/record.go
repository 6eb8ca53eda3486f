package domain

import "time"

// CommandStatus is the lifecycle state of a command execution record.
type CommandStatus string

const (
	StatusInitiated  CommandStatus = "initiated"
	StatusProcessing CommandStatus = "processing"
	StatusCompleted  CommandStatus = "completed"
	StatusFailed     CommandStatus = "failed"
)

// IsTerminal reports whether the status ends the record's lifecycle.
func (s CommandStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CommandRecord is one entry in the command execution ledger. A record is
// written as initiated before any work starts and must end completed or
// failed on every handler path.
type CommandRecord struct {
	ID               string
	Command          string // e.g. "/summary", "/vip"
	UserID           string
	ChannelID        string
	Parameters       string // raw command text
	Status           CommandStatus
	ErrorMessage     string
	ExecutionSeconds float64 // set on completed/failed once processing started
	CreatedAt        time.Time
}
