package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	chatrepo "customer-support-chat/backend/chat/repository"
	"customer-support-chat/backend/pkg/logger"
	"customer-support-chat/backend/shared/redis"
	"customer-support-chat/backend/ticket/models"
	"customer-support-chat/backend/ticket/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ticketTokenPrefix = "CS-"
	tokenSuffixLen    = 8
	// maxTokenAttempts bounds retries when a generated token collides with
	// an existing one. Collisions are improbable but not impossible.
	maxTokenAttempts = 3

	defaultSubject = "Support Request"

	ticketCacheTTL = 30 * time.Second
)

// ErrTokenExhausted is returned when every generated ticket token collided.
var ErrTokenExhausted = errors.New("could not generate a unique ticket token")

// ErrConversationLinked is returned when the conversation already carries a
// ticket; the link is one-to-one.
var ErrConversationLinked = errors.New("conversation already has a ticket")

// Cache is the read-through cache as the ticket flow sees it. A nil Cache
// disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

// CreateTicketInput carries the optional fields of a ticket request.
type CreateTicketInput struct {
	SessionID   string
	Subject     string
	Description string
	Priority    string
}

// TicketService creates and looks up support tickets. Lookups go through an
// optional Redis read-through cache when one is configured.
type TicketService struct {
	tickets       repository.TicketRepository
	conversations chatrepo.ConversationRepository
	cache         Cache
	log           *logger.Logger
}

func NewTicketService(
	tickets repository.TicketRepository,
	conversations chatrepo.ConversationRepository,
	cache Cache,
	log *logger.Logger,
) *TicketService {
	return &TicketService{
		tickets:       tickets,
		conversations: conversations,
		cache:         cache,
		log:           log,
	}
}

// CreateTicket generates a unique ticket token and persists the ticket. An
// unknown session token is not an error: the ticket is simply created without
// a conversation link. A token collision is retried with a fresh token; a
// second ticket for an already-linked conversation fails with
// ErrConversationLinked.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*models.SupportTicket, error) {
	subject := input.Subject
	if subject == "" {
		subject = defaultSubject
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	var conversationID *uint
	if input.SessionID != "" {
		conversation, err := s.conversations.GetBySessionID(input.SessionID)
		switch {
		case err == nil:
			conversationID = &conversation.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.log.Info("ticket created without conversation link", "session_id", input.SessionID)
		default:
			return nil, fmt.Errorf("looking up conversation: %w", err)
		}
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		ticket := &models.SupportTicket{
			TicketID:       newTicketToken(),
			ConversationID: conversationID,
			Subject:        subject,
			Description:    input.Description,
			Status:         models.StatusOpen,
			Priority:       priority,
		}
		err := s.tickets.Create(ticket)
		if err == nil {
			return ticket, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Both unique indexes surface the same error; only a token
			// collision is worth a fresh attempt.
			if conversationID != nil {
				if _, lookupErr := s.tickets.GetByConversationID(*conversationID); lookupErr == nil {
					return nil, ErrConversationLinked
				}
			}
			s.log.Warn("ticket token collision, regenerating", "ticket_id", ticket.TicketID)
			continue
		}
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	return nil, ErrTokenExhausted
}

// GetTicket resolves a ticket token, consulting the cache first when one is
// configured. Not-found propagates as gorm.ErrRecordNotFound.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	cacheKey := "ticket:" + ticketID

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			var ticket models.SupportTicket
			if err := json.Unmarshal([]byte(cached), &ticket); err == nil {
				return &ticket, nil
			}
		case !errors.Is(err, redis.Nil):
			// A miss is expected; anything else means the cache is unwell
			s.log.Warn("ticket cache read failed", "ticket_id", ticketID, "error", err.Error())
		}
	}

	ticket, err := s.tickets.GetByTicketID(ticketID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(ticket); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), ticketCacheTTL); err != nil {
				s.log.Warn("failed to cache ticket", "ticket_id", ticketID, "error", err.Error())
			}
		}
	}
	return ticket, nil
}

// newTicketToken builds tokens like CS-9F2A41BC.
func newTicketToken() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ticketTokenPrefix + strings.ToUpper(hex[:tokenSuffixLen])
}
