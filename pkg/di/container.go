package di

import (
	"context"
	"errors"

	"customer-support-chat/backend/ai"
	chatrepo "customer-support-chat/backend/chat/repository"
	chatservice "customer-support-chat/backend/chat/service"
	"customer-support-chat/backend/pkg/config"
	"customer-support-chat/backend/pkg/health"
	"customer-support-chat/backend/pkg/logger"
	"customer-support-chat/backend/pkg/secrets"
	"customer-support-chat/backend/shared/redis"
	ticketrepo "customer-support-chat/backend/ticket/repository"
	ticketservice "customer-support-chat/backend/ticket/service"

	"gorm.io/gorm"

	"time"
)

// Container holds all the dependencies for the application
type Container struct {
	DB            *gorm.DB
	Logger        *logger.Logger
	Completion    *ai.Service // nil in degraded mode
	ChatService   *chatservice.ChatService
	TicketService *ticketservice.TicketService
	Redis         *redis.Client // nil when not configured
	Health        *health.Checker
}

// New creates a new dependency injection container. A missing completion
// credential is not fatal: the chat service is wired without a completion
// client and serves degraded-mode replies.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	conversationRepo := chatrepo.NewGormConversationRepository(db)
	messageRepo := chatrepo.NewGormMessageRepository(db)
	ticketRepo := ticketrepo.NewGormTicketRepository(db)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(cfg.Redis.Addr)
	}

	apiKey := secrets.GetSecretWithDefault(context.Background(), "llm-api-key", "")

	var completion *ai.Service
	svc, err := ai.NewService(ai.Config{
		APIKey:  apiKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, log)
	switch {
	case err == nil:
		completion = svc
	case errors.Is(err, ai.ErrNoAPIKey):
		log.Warn("completion API key missing, running in degraded mode")
	default:
		return nil, err
	}

	// ChatService takes the interface; a nil *ai.Service must stay a nil
	// interface value so the degraded-mode branch fires.
	var completionClient chatservice.CompletionClient
	if completion != nil {
		completionClient = completion
	}

	chatService := chatservice.NewChatService(conversationRepo, messageRepo, completionClient, log)

	// Same typed-nil guard for the ticket cache
	var ticketCache ticketservice.Cache
	if redisClient != nil {
		ticketCache = redisClient
	}
	ticketService := ticketservice.NewTicketService(ticketRepo, conversationRepo, ticketCache, log)

	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterDatabaseCheck(func() error {
		return config.TestConnection(db)
	})
	checker.RegisterCompletionCheck(func() bool {
		return completion != nil
	})
	if redisClient != nil {
		checker.RegisterCheck("redis", false, func() (health.Status, string, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx); err != nil {
				return health.StatusDegraded, "Redis unreachable, cache disabled", err
			}
			return health.StatusUp, "Redis connection is established", nil
		})
	}

	return &Container{
		DB:            db,
		Logger:        log,
		Completion:    completion,
		ChatService:   chatService,
		TicketService: ticketService,
		Redis:         redisClient,
		Health:        checker,
	}, nil
}
