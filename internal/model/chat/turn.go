package chat

// Turn persists one complete user/assistant exchange.
// The timestamp doubles as the record's unique key within the log;
// a committed turn is never edited in place, only deleted and re-appended.
type Turn struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Assistant string `json:"assistant"`
	Emotion   string `json:"emotion"`
}

// ContextMessage is one role-tagged entry of the prompt sent upstream.
// Built fresh per request, never persisted.
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
