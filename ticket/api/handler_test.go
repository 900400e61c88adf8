package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	chatmodels "customer-support-chat/backend/chat/models"
	apperrors "customer-support-chat/backend/pkg/errors"
	"customer-support-chat/backend/pkg/logger"
	"customer-support-chat/backend/ticket/models"
	"customer-support-chat/backend/ticket/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTicketRepo struct {
	byToken map[string]*models.SupportTicket
	byConv  map[uint]*models.SupportTicket
	nextID  uint
}

func (r *fakeTicketRepo) Create(ticket *models.SupportTicket) error {
	if _, ok := r.byToken[ticket.TicketID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if ticket.ConversationID != nil {
		if _, ok := r.byConv[*ticket.ConversationID]; ok {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	ticket.ID = r.nextID
	r.byToken[ticket.TicketID] = ticket
	if ticket.ConversationID != nil {
		r.byConv[*ticket.ConversationID] = ticket
	}
	return nil
}

func (r *fakeTicketRepo) GetByTicketID(ticketID string) (*models.SupportTicket, error) {
	if ticket, ok := r.byToken[ticketID]; ok {
		return ticket, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTicketRepo) GetByConversationID(conversationID uint) (*models.SupportTicket, error) {
	if ticket, ok := r.byConv[conversationID]; ok {
		return ticket, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeConversationRepo struct {
	bySession map[string]*chatmodels.Conversation
}

func (r *fakeConversationRepo) GetBySessionID(sessionID string) (*chatmodels.Conversation, error) {
	if conv, ok := r.bySession[sessionID]; ok {
		return conv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) GetOrCreate(sessionID string) (*chatmodels.Conversation, bool, error) {
	conv, err := r.GetBySessionID(sessionID)
	if err != nil {
		return nil, false, err
	}
	return conv, false, nil
}

func (r *fakeConversationRepo) Touch(conversationID uint) error { return nil }

func newTestRouter(t *testing.T, conversations map[string]*chatmodels.Conversation) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.Config{Level: "error", JSON: true, Output: io.Discard})
	logger.SetGlobal(log)

	if conversations == nil {
		conversations = map[string]*chatmodels.Conversation{}
	}
	ticketService := service.NewTicketService(
		&fakeTicketRepo{
			byToken: map[string]*models.SupportTicket{},
			byConv:  map[uint]*models.SupportTicket{},
		},
		&fakeConversationRepo{bySession: conversations},
		nil,
		log,
	)

	engine := gin.New()
	engine.Use(apperrors.ErrorHandler())
	RegisterRoutes(engine.Group("/api/v1"), NewTicketHandler(ticketService, log))
	return engine
}

func postJSON(engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreateTicketEndpoint(t *testing.T) {
	engine := newTestRouter(t, map[string]*chatmodels.Conversation{
		"sess-1": {ID: 7, SessionID: "sess-1"},
	})

	w := postJSON(engine, "/api/v1/tickets", gin.H{
		"session_id":  "sess-1",
		"subject":     "Refund request",
		"description": "Charged twice",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ticket models.SupportTicket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Regexp(t, `^CS-[0-9A-F]{8}$`, ticket.TicketID)
	assert.Equal(t, "Refund request", ticket.Subject)
	assert.Equal(t, models.PriorityHigh, ticket.Priority)
	assert.Equal(t, models.StatusOpen, ticket.Status)
	require.NotNil(t, ticket.ConversationID)
	assert.Equal(t, uint(7), *ticket.ConversationID)
}

func TestCreateTicketEndpointDefaults(t *testing.T) {
	engine := newTestRouter(t, nil)

	w := postJSON(engine, "/api/v1/tickets", gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)

	var ticket models.SupportTicket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, "Support Request", ticket.Subject)
	assert.Equal(t, models.PriorityMedium, ticket.Priority)
	assert.Nil(t, ticket.ConversationID)
}

func TestCreateTicketEndpointConflict(t *testing.T) {
	engine := newTestRouter(t, map[string]*chatmodels.Conversation{
		"sess-1": {ID: 7, SessionID: "sess-1"},
	})

	w := postJSON(engine, "/api/v1/tickets", gin.H{"session_id": "sess-1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(engine, "/api/v1/tickets", gin.H{"session_id": "sess-1"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "TICKET_ALREADY_EXISTS")
}

func TestCreateTicketEndpointInvalidPriority(t *testing.T) {
	engine := newTestRouter(t, nil)

	w := postJSON(engine, "/api/v1/tickets", gin.H{"priority": "catastrophic"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestGetTicketEndpoint(t *testing.T) {
	engine := newTestRouter(t, nil)

	w := postJSON(engine, "/api/v1/tickets", gin.H{"subject": "Login broken"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.SupportTicket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/"+created.TicketID, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var found models.SupportTicket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Equal(t, created.TicketID, found.TicketID)
	assert.Equal(t, "Login broken", found.Subject)
}

func TestGetTicketEndpointNotFound(t *testing.T) {
	engine := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/CS-00000000", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TICKET_NOT_FOUND")
}
