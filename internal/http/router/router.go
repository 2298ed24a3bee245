package router

import (
	"context"

	"github.com/gin-gonic/gin"

	"taskdeck.app/assistant/common/llm"
	"taskdeck.app/assistant/internal/assistant"
	"taskdeck.app/assistant/internal/http/handler"
)

func SetupRoutes(router *gin.Engine, manager *assistant.Manager, transcriber llm.Transcriber) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		assistantHandler := handler.NewAssistantHandler(managerHub{manager})
		AssistantRouter(v1.Group("/workspaces/:workspace_id/assistant"), assistantHandler)

		transcriptionHandler := handler.NewTranscriptionHandler(transcriber)
		v1.POST("/assistant/transcriptions", transcriptionHandler.Create)
	}
}

// managerHub adapts the session manager to the handler's interface.
type managerHub struct {
	m *assistant.Manager
}

func (h managerHub) Conversation(ctx context.Context, workspaceID int64) handler.Conversation {
	return h.m.Session(ctx, workspaceID)
}
