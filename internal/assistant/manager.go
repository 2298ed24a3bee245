package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/common/llm"
	"taskdeck.app/assistant/core/config"
	"taskdeck.app/assistant/internal/repository"
)

// Manager hands out one Session per workspace and restores the stored
// transcript the first time a workspace's session is opened.
type Manager struct {
	llm         llm.AgentClient // nil when no API key is configured
	tools       *Tools
	builder     *ContextBuilder
	stores      *repository.Stores
	transcripts TranscriptStore
	ids         *id.Generator

	requestTimeout time.Duration
	maxTokens      int
	temperature    float64

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewManager(cfg config.LLMConfig, client llm.AgentClient, stores *repository.Stores, transcripts TranscriptStore, ids *id.Generator) *Manager {
	return &Manager{
		llm:            client,
		tools:          NewTools(stores),
		builder:        NewContextBuilder(stores.Projects, stores.Members),
		stores:         stores,
		transcripts:    transcripts,
		ids:            ids,
		requestTimeout: cfg.RequestTimeout,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		sessions:       make(map[int64]*Session),
	}
}

// Session returns the workspace's session, creating it on first use. A
// freshly created session is seeded from the stored transcript; load
// failures start the session empty rather than failing the request.
func (m *Manager) Session(ctx context.Context, workspaceID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[workspaceID]; ok {
		return s
	}

	s := &Session{
		workspaceID:    workspaceID,
		llm:            m.llm,
		tools:          m.tools,
		builder:        m.builder,
		tasks:          m.stores.Tasks,
		transcripts:    m.transcripts,
		ids:            m.ids,
		requestTimeout: m.requestTimeout,
		maxTokens:      m.maxTokens,
		temperature:    m.temperature,
		persist:        newDebouncer(persistDebounce),
	}

	stored, err := m.transcripts.Load(ctx, workspaceID)
	if err != nil {
		slog.WarnContext(ctx, "failed to restore transcript, starting empty",
			"workspace_id", workspaceID, "error", err)
	} else {
		s.messages = stored
	}

	m.sessions[workspaceID] = s
	return s
}

// Shutdown flushes every session's pending transcript write.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Flush()
	}
}
