package service

import (
	"strings"

	"customer-support-chat/backend/ai"
	"customer-support-chat/backend/chat/models"
)

// maxContextMessages bounds how much stored history is replayed to the
// completion provider per request. Older turns are dropped silently.
const maxContextMessages = 10

// BuildContext renders the prompt sent to the completion provider: the fixed
// system instructions, up to the maxContextMessages most recent stored turns
// in chronological order, the new inbound message, and a trailing Assistant
// marker. Pure function; deterministic for identical inputs.
func BuildContext(history []models.Message, userMessage string) string {
	var b strings.Builder
	b.WriteString(ai.SystemPrompt)
	b.WriteString("\n\nConversation:\n")

	start := 0
	if len(history) > maxContextMessages {
		start = len(history) - maxContextMessages
	}
	for _, msg := range history[start:] {
		role := "Assistant"
		if msg.Sender == models.SenderUser {
			role = "Customer"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	b.WriteString("Customer: ")
	b.WriteString(userMessage)
	b.WriteString("\nAssistant:")
	return b.String()
}
