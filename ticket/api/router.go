package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the ticket endpoints on the given group.
func RegisterRoutes(rg *gin.RouterGroup, handler *TicketHandler) {
	tickets := rg.Group("/tickets")
	{
		tickets.POST("", handler.CreateTicket)
		tickets.GET("/:ticket_id", handler.GetTicket)
	}
}
