package repository

import (
	"customer-support-chat/backend/ticket/models"

	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ticket *models.SupportTicket) error
	GetByTicketID(ticketID string) (*models.SupportTicket, error)
	GetByConversationID(conversationID uint) (*models.SupportTicket, error)
}

type GormTicketRepository struct {
	db *gorm.DB
}

func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create inserts the ticket. A ticket-token collision violates the unique
// index and comes back as gorm.ErrDuplicatedKey; the service layer retries
// with a fresh token.
func (r *GormTicketRepository) Create(ticket *models.SupportTicket) error {
	return r.db.Create(ticket).Error
}

func (r *GormTicketRepository) GetByTicketID(ticketID string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Where("ticket_id = ?", ticketID).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetByConversationID returns the ticket linked to a conversation. The link
// is unique, so at most one row matches.
func (r *GormTicketRepository) GetByConversationID(conversationID uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Where("conversation_id = ?", conversationID).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
