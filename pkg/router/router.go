package router

import (
	"strings"

	chatapi "customer-support-chat/backend/chat/api"
	"customer-support-chat/backend/pkg/config"
	"customer-support-chat/backend/pkg/di"
	"customer-support-chat/backend/pkg/errors"
	"customer-support-chat/backend/pkg/logger"
	"customer-support-chat/backend/pkg/middleware"
	ticketapi "customer-support-chat/backend/ticket/api"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger first so every request gets a request-scoped logger
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
		Limit: rate.Limit(cfg.Security.RateLimit),
		Burst: cfg.Security.RateLimitBurst,
	})
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	chatHandler := chatapi.NewChatHandler(r.Container.ChatService, r.Logger)
	ticketHandler := ticketapi.NewTicketHandler(r.Container.TicketService, r.Logger)

	r.setupHealthRoutes()

	v1 := r.Engine.Group("/api/v1")
	{
		chatapi.RegisterRoutes(v1, chatHandler)
		ticketapi.RegisterRoutes(v1, ticketHandler)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	origins := strings.Join(allowedOrigins, ", ")
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origins)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
