package repository

import (
	"errors"

	"customer-support-chat/backend/chat/models"

	"gorm.io/gorm"
)

type ConversationRepository interface {
	GetBySessionID(sessionID string) (*models.Conversation, error)
	GetOrCreate(sessionID string) (*models.Conversation, bool, error)
	Touch(conversationID uint) error
}

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) GetBySessionID(sessionID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("session_id = ?", sessionID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetOrCreate returns the conversation for the session token, creating it when
// none exists. The session_id unique constraint is the sole correctness
// mechanism under concurrent creation: a losing insert surfaces as
// gorm.ErrDuplicatedKey and is resolved by re-fetching the winner's row.
// The second return value reports whether a new conversation was created.
func (r *GormConversationRepository) GetOrCreate(sessionID string) (*models.Conversation, bool, error) {
	conversation, err := r.GetBySessionID(sessionID)
	if err == nil {
		return conversation, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := &models.Conversation{SessionID: sessionID}
	if err := r.db.Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, fetchErr := r.GetBySessionID(sessionID)
			if fetchErr != nil {
				return nil, false, fetchErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return created, true, nil
}

// Touch bumps the conversation's updated_at after a new message lands.
func (r *GormConversationRepository) Touch(conversationID uint) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}
