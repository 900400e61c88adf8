package api

import (
	"errors"
	"net/http"

	"customer-support-chat/backend/chat/service"
	apperrors "customer-support-chat/backend/pkg/errors"
	"customer-support-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChatHandler struct {
	chat *service.ChatService
	log  *logger.Logger
}

func NewChatHandler(chat *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

type chatRequest struct {
	Message   string `json:"message" binding:"required,max=1000"`
	SessionID string `json:"session_id"`
}

// Chat handles one inbound user message and returns the reply, the session
// token (minted when absent), the reply's message ID, and the escalation flag.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequestWithDetails(
			"VALIDATION_ERROR",
			"message is required and must be at most 1000 characters",
			err.Error(),
		))
		return
	}

	result, err := h.chat.HandleMessage(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		// Internal detail stays server-side.
		h.log.LogError(err, "chat request failed", "session_id", req.SessionID)
		c.Error(apperrors.NewInternalServerError("INTERNAL_ERROR", "Internal server error"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetConversation returns the full ordered history for a session token.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	conversation, err := h.chat.GetConversation(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Error(apperrors.NewNotFoundError("CONVERSATION_NOT_FOUND", "Conversation not found"))
			return
		}
		h.log.LogError(err, "conversation lookup failed", "session_id", sessionID)
		c.Error(apperrors.NewInternalServerError("INTERNAL_ERROR", "Internal server error"))
		return
	}

	c.JSON(http.StatusOK, conversation)
}
