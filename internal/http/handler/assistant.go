package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskdeck.app/assistant/internal/model"
)

// Conversation is the per-workspace session surface the handlers drive.
type Conversation interface {
	SendMessage(ctx context.Context, actingUserID int64, text string)
	RetryLastMessage(ctx context.Context)
	Abort()
	ClearMessages(ctx context.Context) error
	Messages() []model.ChatMessage
	CanRetry() bool
}

// SessionHub hands out one Conversation per workspace.
type SessionHub interface {
	Conversation(ctx context.Context, workspaceID int64) Conversation
}

type AssistantHandler struct {
	hub SessionHub
}

func NewAssistantHandler(hub SessionHub) *AssistantHandler {
	return &AssistantHandler{hub: hub}
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type transcriptResponse struct {
	Messages []model.ChatMessage `json:"messages"`
	CanRetry bool                `json:"can_retry"`
}

// Send appends the user message and runs the assistant turn to completion.
// Model failures do not surface as HTTP errors; they appear as warning
// messages inside the returned transcript.
func (h *AssistantHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()

	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: message is required"})
		return
	}

	session := h.hub.Conversation(ctx, workspaceID)
	session.SendMessage(ctx, userID, req.Message)

	c.JSON(http.StatusOK, transcriptResponse{
		Messages: session.Messages(),
		CanRetry: session.CanRetry(),
	})
}

// Transcript returns the current visible transcript.
func (h *AssistantHandler) Transcript(c *gin.Context) {
	ctx := c.Request.Context()

	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	session := h.hub.Conversation(ctx, workspaceID)
	messages := session.Messages()
	if messages == nil {
		messages = []model.ChatMessage{}
	}

	c.JSON(http.StatusOK, transcriptResponse{
		Messages: messages,
		CanRetry: session.CanRetry(),
	})
}

// Retry re-sends the last failed prompt. A retry with nothing to retry is
// a no-op that returns the unchanged transcript.
func (h *AssistantHandler) Retry(c *gin.Context) {
	ctx := c.Request.Context()

	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	session := h.hub.Conversation(ctx, workspaceID)
	session.RetryLastMessage(ctx)

	c.JSON(http.StatusOK, transcriptResponse{
		Messages: session.Messages(),
		CanRetry: session.CanRetry(),
	})
}

// Abort requests cancellation of the in-flight turn.
func (h *AssistantHandler) Abort(c *gin.Context) {
	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	h.hub.Conversation(c.Request.Context(), workspaceID).Abort()
	c.JSON(http.StatusAccepted, gin.H{"status": "aborting"})
}

// Clear wipes the conversation, in memory and in the store.
func (h *AssistantHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()

	workspaceID, ok := workspaceParam(c)
	if !ok {
		return
	}

	if err := h.hub.Conversation(ctx, workspaceID).ClearMessages(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear conversation",
			"error", err, "workspace_id", workspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func workspaceParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("workspace_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
		return 0, false
	}
	return id, true
}

// actingUser reads the authenticated user from the X-User-ID header set by
// the gateway in front of this service.
func actingUser(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-ID header"})
		return 0, false
	}
	return id, true
}
