package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"

	"customer-support-chat/backend/ai"
	"customer-support-chat/backend/chat/models"
	"customer-support-chat/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeConversationRepo struct {
	bySession map[string]*models.Conversation
	nextID    uint
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{bySession: make(map[string]*models.Conversation)}
}

func (r *fakeConversationRepo) GetBySessionID(sessionID string) (*models.Conversation, error) {
	if conv, ok := r.bySession[sessionID]; ok {
		return conv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) GetOrCreate(sessionID string) (*models.Conversation, bool, error) {
	if conv, ok := r.bySession[sessionID]; ok {
		return conv, false, nil
	}
	r.nextID++
	conv := &models.Conversation{ID: r.nextID, SessionID: sessionID}
	r.bySession[sessionID] = conv
	return conv, true, nil
}

func (r *fakeConversationRepo) Touch(conversationID uint) error { return nil }

type fakeMessageRepo struct {
	messages []models.Message
	nextID   uint
}

func (r *fakeMessageRepo) Create(message *models.Message) error {
	r.nextID++
	message.ID = r.nextID
	r.messages = append(r.messages, *message)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(conversationID uint) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) RecentByConversation(conversationID uint, limit int) ([]models.Message, error) {
	out, _ := r.ListByConversation(conversationID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCompletion struct {
	reply      string
	analysis   ai.IntentAnalysis
	prompts    []string
	classified []string
}

func (f *fakeCompletion) GenerateReply(ctx context.Context, prompt string) string {
	f.prompts = append(f.prompts, prompt)
	return f.reply
}

func (f *fakeCompletion) ClassifyIntent(ctx context.Context, message string) ai.IntentAnalysis {
	f.classified = append(f.classified, message)
	return f.analysis
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", JSON: true, Output: io.Discard})
}

func TestHandleMessageNewSession(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	completion := &fakeCompletion{reply: "Happy to help!", analysis: ai.DefaultIntentAnalysis()}
	svc := NewChatService(convRepo, msgRepo, completion, testLogger())

	result, err := svc.HandleMessage(context.Background(), "Hello", "")
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "Happy to help!", result.Response)
	assert.False(t, result.RequiresHuman)

	// Exactly one conversation with a user+bot pair, in that order
	assert.Len(t, convRepo.bySession, 1)
	require.Len(t, msgRepo.messages, 2)
	assert.Equal(t, models.SenderUser, msgRepo.messages[0].Sender)
	assert.Equal(t, "Hello", msgRepo.messages[0].Content)
	assert.Equal(t, models.SenderBot, msgRepo.messages[1].Sender)
	assert.Equal(t, msgRepo.messages[1].ID, result.MessageID)
}

func TestHandleMessageReusesExistingConversation(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	completion := &fakeCompletion{reply: "ok", analysis: ai.DefaultIntentAnalysis()}
	svc := NewChatService(convRepo, msgRepo, completion, testLogger())

	first, err := svc.HandleMessage(context.Background(), "first", "")
	require.NoError(t, err)

	second, err := svc.HandleMessage(context.Background(), "second", first.SessionID)
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, convRepo.bySession, 1)
	assert.Len(t, msgRepo.messages, 4)
}

func TestHandleMessageDegradedMode(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	svc := NewChatService(convRepo, msgRepo, nil, testLogger())

	result, err := svc.HandleMessage(context.Background(), "Hello", "")
	require.NoError(t, err)

	assert.Equal(t, DegradedModeReply, result.Response)
	assert.True(t, result.RequiresHuman)

	// The degraded reply is still recorded as a bot message
	require.Len(t, msgRepo.messages, 2)
	assert.Equal(t, DegradedModeReply, msgRepo.messages[1].Content)
}

func TestHandleMessageEscalation(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	completion := &fakeCompletion{
		reply: "Let me get a person for you.",
		analysis: ai.IntentAnalysis{
			Intent:        "request_human",
			Urgency:       "high",
			Sentiment:     "negative",
			RequiresHuman: true,
			KeyTopics:     []string{"escalation"},
		},
	}
	svc := NewChatService(convRepo, msgRepo, completion, testLogger())

	result, err := svc.HandleMessage(context.Background(), "I want a human", "")
	require.NoError(t, err)

	assert.True(t, result.RequiresHuman)
	require.Len(t, completion.classified, 1)
	assert.Equal(t, "I want a human", completion.classified[0])
}

func TestHandleMessageContextWindow(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	completion := &fakeCompletion{reply: "ok", analysis: ai.DefaultIntentAnalysis()}
	svc := NewChatService(convRepo, msgRepo, completion, testLogger())

	conv, _, err := convRepo.GetOrCreate("long-session")
	require.NoError(t, err)
	for i := 1; i <= 15; i++ {
		require.NoError(t, msgRepo.Create(&models.Message{
			ConversationID: conv.ID,
			Sender:         models.SenderUser,
			Content:        fmt.Sprintf("old-%d", i),
		}))
	}

	_, err = svc.HandleMessage(context.Background(), "newest", "long-session")
	require.NoError(t, err)

	require.Len(t, completion.prompts, 1)
	prompt := completion.prompts[0]
	assert.Contains(t, prompt, "old-15")
	assert.NotContains(t, prompt, "old-1\n")
	assert.NotContains(t, prompt, "old-6\n")
	assert.Contains(t, prompt, "old-7\n")
}

func TestGetConversation(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	svc := NewChatService(convRepo, msgRepo, nil, testLogger())

	_, err := svc.GetConversation("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	result, err := svc.HandleMessage(context.Background(), "Hello", "")
	require.NoError(t, err)

	conv, err := svc.GetConversation(result.SessionID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Hello", conv.Messages[0].Content)
	assert.Equal(t, models.SenderUser, conv.Messages[0].Sender)
	assert.Equal(t, models.SenderBot, conv.Messages[1].Sender)
}
