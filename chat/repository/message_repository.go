package repository

import (
	"customer-support-chat/backend/chat/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *models.Message) error
	ListByConversation(conversationID uint) ([]models.Message, error)
	RecentByConversation(conversationID uint, limit int) ([]models.Message, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns the full history in chronological order.
func (r *GormMessageRepository) ListByConversation(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// RecentByConversation returns up to limit messages, newest first. Callers
// reverse the slice before rendering so the prompt stays chronological.
func (r *GormMessageRepository) RecentByConversation(conversationID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
