package models

import (
	"time"
)

// Sender values for chat messages
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Conversation groups the messages exchanged under one session token.
// A conversation is created the first time a session token is seen and is
// never deleted by this service.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Message is a single chat turn. Messages are immutable once written;
// insertion order matches timestamp order within a conversation.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index;not null"`
	Sender         string    `json:"sender" gorm:"size:10;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	Timestamp      time.Time `json:"timestamp" gorm:"index;autoCreateTime"`
}
