package domain

// CommandKind identifies which summary request a raw command text resolved to.
type CommandKind string

const (
	CommandPlainChannel   CommandKind = "plain_channel"
	CommandUnread         CommandKind = "unread"
	CommandThreadLatest   CommandKind = "thread_latest"
	CommandThreadSpecific CommandKind = "thread_specific"
	CommandVIPDM          CommandKind = "vip_dm"
	CommandVIPChannel     CommandKind = "vip_channel"
	CommandInvalid        CommandKind = "invalid"
)

// ParsedCommand is the result of parsing a summary command's free text.
// Only the fields relevant to Kind are populated.
type ParsedCommand struct {
	Kind CommandKind

	// Channel is the target channel name with any leading '#' stripped.
	// Empty means "the channel the command was issued in".
	Channel string

	// Username is the VIP username with any leading '@' stripped.
	Username string

	// LinkChannelID and LinkTs are decoded from a message permalink for
	// thread-specific requests.
	LinkChannelID string
	LinkTs        string

	// Reason explains an invalid parse.
	Reason string
}
