package models

import (
	"time"
)

// Ticket status values
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// SupportTicket is a support request raised from a chat session. The
// client-visible TicketID token is distinct from the store primary key.
// A ticket optionally references one conversation; the link is one-to-one,
// so a conversation carries at most one ticket.
type SupportTicket struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TicketID       string    `json:"ticket_id" gorm:"uniqueIndex;size:20;not null"`
	ConversationID *uint     `json:"conversation_id,omitempty" gorm:"uniqueIndex"`
	Subject        string    `json:"subject" gorm:"size:200;not null"`
	Description    string    `json:"description" gorm:"type:text"`
	Status         string    `json:"status" gorm:"size:20;not null;default:open"`
	Priority       string    `json:"priority" gorm:"size:10;not null;default:medium"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
