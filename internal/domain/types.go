package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationEntry is one transcript bubble. The transcript itself is an
// append-only log held in the browser tab; the server only renders entries
// into HTML fragments and never stores them.
type ConversationEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Valid reports whether r is one of the two transcript roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}
