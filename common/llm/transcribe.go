package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Transcriber posts recorded audio clips to a transcription endpoint.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type TranscriberConfig struct {
	APIKey   string
	BaseURL  string
	Model    string // e.g. "whisper-1"
	Language string // ISO 639-1 code, e.g. "en"
}

type openaiTranscriber struct {
	client   openai.Client
	model    string
	language string
}

// NewTranscriber creates a Transcriber backed by an OpenAI-compatible
// audio transcriptions endpoint.
func NewTranscriber(cfg TranscriberConfig) (Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}

	return &openaiTranscriber{
		client:   openai.NewClient(opts...),
		model:    model,
		language: cfg.Language,
	}, nil
}

func (t *openaiTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "application/octet-stream"),
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}

	start := time.Now()
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", wrapUpstreamError(err)
	}

	slog.DebugContext(ctx, "audio transcribed",
		"model", t.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"text_len", len(resp.Text))

	return resp.Text, nil
}
