package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the chat endpoints on the given group.
func RegisterRoutes(rg *gin.RouterGroup, handler *ChatHandler) {
	rg.POST("/chat", handler.Chat)
	rg.GET("/conversations/:session_id", handler.GetConversation)
}
