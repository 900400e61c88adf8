package api

import (
	"errors"
	"net/http"

	apperrors "customer-support-chat/backend/pkg/errors"
	"customer-support-chat/backend/pkg/logger"
	"customer-support-chat/backend/ticket/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TicketHandler struct {
	tickets *service.TicketService
	log     *logger.Logger
}

func NewTicketHandler(tickets *service.TicketService, log *logger.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, log: log}
}

type createTicketRequest struct {
	SessionID   string `json:"session_id"`
	Subject     string `json:"subject" binding:"omitempty,max=200"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// CreateTicket creates a support ticket, optionally linked to an existing
// conversation by session token.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequestWithDetails(
			"VALIDATION_ERROR",
			"invalid ticket request",
			err.Error(),
		))
		return
	}

	ticket, err := h.tickets.CreateTicket(c.Request.Context(), service.CreateTicketInput{
		SessionID:   req.SessionID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		if errors.Is(err, service.ErrConversationLinked) {
			c.Error(apperrors.NewConflictError("TICKET_ALREADY_EXISTS", "A ticket already exists for this conversation"))
			return
		}
		h.log.LogError(err, "ticket creation failed", "session_id", req.SessionID)
		c.Error(apperrors.NewInternalServerError("INTERNAL_ERROR", "Internal server error"))
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// GetTicket resolves a ticket token to its full record.
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID := c.Param("ticket_id")

	ticket, err := h.tickets.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Error(apperrors.NewNotFoundError("TICKET_NOT_FOUND", "Ticket not found"))
			return
		}
		h.log.LogError(err, "ticket lookup failed", "ticket_id", ticketID)
		c.Error(apperrors.NewInternalServerError("INTERNAL_ERROR", "Internal server error"))
		return
	}

	c.JSON(http.StatusOK, ticket)
}
