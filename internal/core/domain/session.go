package domain

// Conversation roles.
const (
	// RoleUser marks a turn authored by the user.
	RoleUser = "user"

	// RoleAssistant marks a turn authored by the assistant.
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation session.
type Turn struct {
	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}
