package service

import (
	"context"
	"fmt"

	"customer-support-chat/backend/ai"
	"customer-support-chat/backend/chat/models"
	"customer-support-chat/backend/chat/repository"
	"customer-support-chat/backend/pkg/logger"

	"github.com/google/uuid"
)

// DegradedModeReply is returned when no completion client is configured.
// Degraded-mode responses always force human escalation.
const DegradedModeReply = "I apologize, but our AI assistant is currently unavailable. Please contact our support team directly for assistance."

// CompletionClient is the completion capability as the chat flow sees it.
// Implementations absorb provider failures internally; neither operation
// reports an error.
type CompletionClient interface {
	GenerateReply(ctx context.Context, prompt string) string
	ClassifyIntent(ctx context.Context, message string) ai.IntentAnalysis
}

// ChatResult is the unified outcome of one inbound message.
type ChatResult struct {
	Response      string `json:"response"`
	SessionID     string `json:"session_id"`
	MessageID     uint   `json:"message_id"`
	RequiresHuman bool   `json:"requires_human"`
}

// ChatService coordinates one chat transaction: resolve the session, record
// the inbound message, assemble context, obtain a reply and intent analysis,
// record the reply. Each request is handled independently; the store is the
// only state shared across requests.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	completion    CompletionClient
	log           *logger.Logger
}

// NewChatService wires the orchestrator. completion may be nil, which puts
// the service in degraded mode permanently.
func NewChatService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	completion CompletionClient,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		completion:    completion,
		log:           log,
	}
}

// HandleMessage runs the per-request state machine. Already-persisted writes
// are not rolled back on a later failure: the inbound message may outlive a
// failed reply (at-least-once recording, no cross-message transaction).
func (s *ChatService) HandleMessage(ctx context.Context, userMessage, sessionID string) (*ChatResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
		s.log.Info("generated new session", "session_id", sessionID)
	}

	conversation, created, err := s.conversations.GetOrCreate(sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}
	if created {
		s.log.Info("conversation created", "session_id", sessionID)
	}

	userMsg := &models.Message{
		ConversationID: conversation.ID,
		Sender:         models.SenderUser,
		Content:        userMessage,
	}
	if err := s.messages.Create(userMsg); err != nil {
		return nil, fmt.Errorf("recording inbound message: %w", err)
	}

	reply, requiresHuman := s.respond(ctx, conversation.ID, userMessage)

	botMsg := &models.Message{
		ConversationID: conversation.ID,
		Sender:         models.SenderBot,
		Content:        reply,
	}
	if err := s.messages.Create(botMsg); err != nil {
		return nil, fmt.Errorf("recording reply: %w", err)
	}

	if err := s.conversations.Touch(conversation.ID); err != nil {
		s.log.Warn("failed to touch conversation", "session_id", sessionID, "error", err.Error())
	}

	return &ChatResult{
		Response:      reply,
		SessionID:     sessionID,
		MessageID:     botMsg.ID,
		RequiresHuman: requiresHuman,
	}, nil
}

// respond produces the reply text and escalation flag. With no completion
// client the static degraded-mode reply is substituted and classification is
// skipped entirely.
func (s *ChatService) respond(ctx context.Context, conversationID uint, userMessage string) (string, bool) {
	if s.completion == nil {
		return DegradedModeReply, true
	}

	// Read newest-first, then reverse to chronological. The just-stored
	// inbound message is part of the window.
	recent, err := s.messages.RecentByConversation(conversationID, maxContextMessages)
	if err != nil {
		s.log.LogError(err, "failed to load conversation history", "conversation_id", conversationID)
		recent = nil
	}
	history := make([]models.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, recent[i])
	}

	reply := s.completion.GenerateReply(ctx, BuildContext(history, userMessage))
	analysis := s.completion.ClassifyIntent(ctx, userMessage)
	return reply, analysis.RequiresHuman
}

// GetConversation returns the conversation for a session token with its full
// message history in chronological order.
func (s *ChatService) GetConversation(sessionID string) (*models.Conversation, error) {
	conversation, err := s.conversations.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByConversation(conversation.ID)
	if err != nil {
		return nil, err
	}
	conversation.Messages = messages
	return conversation, nil
}
