package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskdeck.app/assistant/common/llm"
)

// maxAudioBytes caps uploaded voice clips. Browser recordings of a spoken
// prompt are well under this.
const maxAudioBytes = 25 << 20

type TranscriptionHandler struct {
	transcriber llm.Transcriber // nil when no API key is configured
}

func NewTranscriptionHandler(transcriber llm.Transcriber) *TranscriptionHandler {
	return &TranscriptionHandler{transcriber: transcriber}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Create accepts a multipart "audio" file and returns its transcription.
// An empty transcription is reported as unprocessable so the client shows
// "couldn't hear anything" instead of silently sending a blank prompt.
func (h *TranscriptionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	if h.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription is not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioBytes)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: audio file is required"})
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		filename = "clip.webm"
	}

	text, err := h.transcriber.Transcribe(ctx, file, filename)
	if err != nil {
		slog.ErrorContext(ctx, "transcription failed", "error", err, "filename", filename)
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no speech detected"})
		return
	}

	c.JSON(http.StatusOK, transcriptionResponse{Text: text})
}
