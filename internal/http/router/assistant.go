package router

import (
	"github.com/gin-gonic/gin"

	"taskdeck.app/assistant/internal/http/handler"
)

func AssistantRouter(rg *gin.RouterGroup, h *handler.AssistantHandler) {
	rg.GET("/messages", h.Transcript)
	rg.POST("/messages", h.Send)
	rg.DELETE("/messages", h.Clear)
	rg.POST("/retry", h.Retry)
	rg.POST("/abort", h.Abort)
}
