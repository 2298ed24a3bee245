package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/common/llm"
	"taskdeck.app/assistant/common/logger"
	"taskdeck.app/assistant/internal/model"
	"taskdeck.app/assistant/internal/repository"
)

const (
	// maxToolRounds bounds the conversation loop. Tool-calling models can
	// in principle oscillate between tool calls forever; past this bound
	// the turn degrades to a generic fallback answer.
	maxToolRounds = 6

	// historyWindow is how many prior finished turns the model sees.
	historyWindow = 10
)

// ErrNotConfigured is reported when no API key is configured. It
// short-circuits a turn before any network call.
var ErrNotConfigured = errors.New("assistant is not configured")

// errAborted signals cooperative cancellation between rounds.
var errAborted = errors.New("turn aborted")

// errWorkspaceUnavailable marks a turn that failed loading workspace state
// from the store, before the first model call.
var errWorkspaceUnavailable = errors.New("workspace data unavailable")

// Session is one workspace's assistant conversation. It owns the visible
// transcript and drives the bounded multi-round loop against the
// chat-completions endpoint.
//
// At most one turn is in flight at a time; re-entrant SendMessage calls
// while a turn runs are no-ops.
type Session struct {
	workspaceID int64

	llm         llm.AgentClient // nil = not configured
	tools       *Tools
	builder     *ContextBuilder
	tasks       repository.TaskStore
	transcripts TranscriptStore
	ids         *id.Generator

	requestTimeout time.Duration
	maxTokens      int
	temperature    float64

	mu               sync.Mutex
	messages         []model.ChatMessage
	inFlight         bool
	cancelTurn       context.CancelFunc
	lastFailedPrompt string
	lastFailedUser   int64

	persist *debouncer
}

// SendMessage runs one full user turn: append the user message and a
// loading placeholder, drive the tool loop, finalize the placeholder.
// Guards make it a no-op when the text is blank, a turn is already in
// flight, or the session has no workspace.
//
// Model and network failures do not return an error; they finalize the
// placeholder as a warning message and record the prompt for retry.
func (s *Session) SendMessage(ctx context.Context, actingUserID int64, text string) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.inFlight || s.workspaceID == 0 {
		s.mu.Unlock()
		return
	}
	s.inFlight = true

	// The only synchronous side effect: the transcript reflects the
	// request before any network round-trip starts.
	s.messages = append(s.messages, model.ChatMessage{
		ID:        s.ids.New(),
		Role:      model.ChatRoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	placeholderID := s.ids.New()
	s.messages = append(s.messages, model.ChatMessage{
		ID:        placeholderID,
		Role:      model.ChatRoleAssistant,
		Timestamp: time.Now(),
		IsLoading: true,
		Status:    "Thinking",
	})
	priorHistory := s.historyLocked(len(s.messages) - 2)

	turnCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelTurn = cancel
	s.mu.Unlock()
	defer cancel()

	turnCtx = logger.WithLogFields(turnCtx, logger.LogFields{
		Component:   "assistant.orchestrator",
		WorkspaceID: logger.Ptr(s.workspaceID),
		UserID:      logger.Ptr(actingUserID),
		Turn:        logger.Ptr(placeholderID),
	})

	s.schedulePersist()

	final, buttons, err := s.runTurn(turnCtx, actingUserID, text, priorHistory, placeholderID)

	s.mu.Lock()
	switch {
	case err == nil:
		s.finalizeLocked(placeholderID, final, buttons)
		s.lastFailedPrompt = ""
	case errors.Is(err, errAborted):
		s.finalizeLocked(placeholderID, "Generation stopped.", nil)
	default:
		slog.ErrorContext(turnCtx, "assistant turn failed",
			"error", err, "prompt", logger.Truncate(text, 100))
		s.finalizeLocked(placeholderID, "⚠️ "+userFacingError(err), nil)
		s.lastFailedPrompt = text
		s.lastFailedUser = actingUserID
	}
	s.inFlight = false
	s.cancelTurn = nil
	s.mu.Unlock()

	s.schedulePersist()
}

// runTurn drives the bounded loop. It returns the final display text and
// buttons, errAborted on cooperative cancellation, or a classified error.
func (s *Session) runTurn(ctx context.Context, actingUserID int64, text string, history []llm.Message, placeholderID int64) (string, []model.SmartButton, error) {
	// Configuration failure short-circuits before any network call.
	if s.llm == nil {
		return "", nil, ErrNotConfigured
	}

	// One snapshot per turn: every tool call below observes the same
	// workspace state, even across mutations within the turn.
	wc, err := s.builder.Build(ctx, s.workspaceID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errWorkspaceUnavailable, err)
	}
	taskCount, err := s.tasks.CountByProjects(ctx, wc.ProjectIDs)
	if err != nil {
		return "", nil, fmt.Errorf("%w: counting tasks: %v", errWorkspaceUnavailable, err)
	}

	modelMsgs := make([]llm.Message, 0, len(history)+2)
	modelMsgs = append(modelMsgs, llm.Message{
		Role: "system",
		Content: systemPrompt + "\n\n" + briefing(
			wc.MemberDisplayName(actingUserID),
			len(wc.Projects), taskCount, len(wc.MemberIDs),
			time.Now()),
	})
	modelMsgs = append(modelMsgs, history...)
	modelMsgs = append(modelMsgs, llm.Message{Role: "user", Content: text})

	for round := 1; round <= maxToolRounds; round++ {
		// Cooperative cancellation, checked before each network call. An
		// already-sent request completes and its result is discarded.
		if ctx.Err() != nil {
			return "", nil, errAborted
		}

		resp, err := s.chatRound(ctx, modelMsgs)
		if err != nil {
			if ctx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
				return "", nil, errAborted
			}
			return "", nil, err
		}

		if len(resp.ToolCalls) == 0 {
			if strings.TrimSpace(resp.Content) == "" {
				return fallbackAnswer, nil, nil
			}
			display, buttons := ParseButtons(resp.Content)
			return display, buttons, nil
		}

		slog.DebugContext(ctx, "tool round", "round", round, "tool_calls", len(resp.ToolCalls))

		modelMsgs = append(modelMsgs, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Tools run sequentially, in the order the model requested them,
		// all against the turn's single snapshot.
		for _, tc := range resp.ToolCalls {
			s.setStatus(placeholderID, StatusLabel(tc.Name))

			result := s.tools.Execute(ctx, tc.Name, tc.Arguments, wc, actingUserID)
			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(`{"error": "internal: unencodable tool result"}`)
			}

			modelMsgs = append(modelMsgs, llm.Message{
				Role:       "tool",
				Content:    string(payload),
				ToolCallID: tc.ID,
			})
		}
	}

	return fallbackAnswer, nil, nil
}

// chatRound posts one request with the per-round hard timeout.
func (s *Session) chatRound(ctx context.Context, messages []llm.Message) (*llm.AgentResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	return s.llm.ChatWithTools(reqCtx, llm.AgentRequest{
		Messages:    messages,
		Tools:       s.tools.Definitions(),
		MaxTokens:   s.maxTokens,
		Temperature: llm.Temp(s.temperature),
	})
}

// RetryLastMessage removes the trailing failed user/assistant pair and
// re-sends the stored prompt. Idempotent with respect to transcript
// length: a second call without a new failure is a no-op.
func (s *Session) RetryLastMessage(ctx context.Context) {
	s.mu.Lock()
	if s.lastFailedPrompt == "" || s.inFlight {
		s.mu.Unlock()
		return
	}

	// Drop the failed assistant message and its triggering user message.
	n := len(s.messages)
	if n >= 2 &&
		s.messages[n-1].Role == model.ChatRoleAssistant &&
		s.messages[n-2].Role == model.ChatRoleUser {
		s.messages = s.messages[:n-2]
	}

	prompt := s.lastFailedPrompt
	userID := s.lastFailedUser
	s.lastFailedPrompt = ""
	s.mu.Unlock()

	s.SendMessage(ctx, userID, prompt)
}

// Abort requests cooperative cancellation of the in-flight turn. The loop
// exits before issuing its next network call; at most one round's latency
// is wasted.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelTurn != nil {
		s.cancelTurn()
	}
}

// ClearMessages resets the in-memory transcript and deletes the stored one.
func (s *Session) ClearMessages(ctx context.Context) error {
	s.mu.Lock()
	s.messages = nil
	s.lastFailedPrompt = ""
	s.mu.Unlock()

	s.persist.Stop()
	return s.transcripts.Delete(ctx, s.workspaceID)
}

// Messages returns a copy of the visible transcript.
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// CanRetry reports whether a failed prompt is stored.
func (s *Session) CanRetry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFailedPrompt != ""
}

// historyLocked maps the last finished turns (up to the window) into
// model-facing messages. Loading and empty messages never enter history.
func (s *Session) historyLocked(limit int) []llm.Message {
	var finished []model.ChatMessage
	for _, m := range s.messages[:limit] {
		if m.IsLoading || m.Content == "" {
			continue
		}
		finished = append(finished, m)
	}
	if len(finished) > historyWindow {
		finished = finished[len(finished)-historyWindow:]
	}

	out := make([]llm.Message, 0, len(finished))
	for _, m := range finished {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// setStatus updates the placeholder's progress caption.
func (s *Session) setStatus(placeholderID int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == placeholderID {
			s.messages[i].Status = status
			return
		}
	}
}

// finalizeLocked turns the placeholder into a finished assistant message.
// Callers hold s.mu.
func (s *Session) finalizeLocked(placeholderID int64, content string, buttons []model.SmartButton) {
	for i := range s.messages {
		if s.messages[i].ID == placeholderID {
			s.messages[i].Content = content
			s.messages[i].Buttons = buttons
			s.messages[i].IsLoading = false
			s.messages[i].Status = ""
			return
		}
	}
}

// schedulePersist debounces a write of the persistable transcript subset.
func (s *Session) schedulePersist() {
	snapshot := persistable(s.Messages())
	workspaceID := s.workspaceID

	s.persist.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.transcripts.Save(ctx, workspaceID, snapshot); err != nil {
			slog.Warn("failed to persist transcript",
				"workspace_id", workspaceID, "error", err)
		}
	})
}

// Flush forces any pending transcript write (used on shutdown).
func (s *Session) Flush() {
	s.persist.Flush()
}

// userFacingError maps a turn failure to the transcript message shown to
// the user. Classification follows the error taxonomy: configuration,
// workspace load, upstream non-2xx, timeout, then everything else as a
// transport failure.
func userFacingError(err error) string {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "The AI assistant isn't configured: an API key is required. Ask your administrator to set one, then try again."
	case errors.Is(err, errWorkspaceUnavailable):
		return "Couldn't load your workspace data. Please try again."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The AI service returned an error (status %d). Please try again.", apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	default:
		return "Something went wrong while contacting the AI service. Please try again."
	}
}
