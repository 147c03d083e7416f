package ai

import (
	"fmt"

	"github.com/zhouzirui/life-coach/backend/internal/analysis/emotion"
	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
)

// historyLimit caps how many past turns are expanded into the context window.
const historyLimit = 10

// BuildContext derives the bounded prompt for one request: the fixed system
// message, the last ten turns expanded into user/assistant pairs, then the new
// user message with its emotion label embedded as a prefix tag.
func BuildContext(log []chat.Turn, userMessage string, label emotion.Label) []chat.ContextMessage {
	startIdx := 0
	if len(log) > historyLimit {
		startIdx = len(log) - historyLimit
	}

	messages := make([]chat.ContextMessage, 0, 2+(len(log)-startIdx)*2)
	messages = append(messages, chat.ContextMessage{Role: chat.RoleSystem, Content: systemPrompt})

	for _, turn := range log[startIdx:] {
		messages = append(messages,
			chat.ContextMessage{Role: chat.RoleUser, Content: turn.User},
			chat.ContextMessage{Role: chat.RoleAssistant, Content: turn.Assistant},
		)
	}

	messages = append(messages, chat.ContextMessage{
		Role:    chat.RoleUser,
		Content: fmt.Sprintf("[emotion:%s] %s", label, userMessage),
	})

	return messages
}
