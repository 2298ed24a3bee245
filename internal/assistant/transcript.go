package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"taskdeck.app/assistant/internal/model"
)

const (
	// persistDebounce coalesces the burst of transcript changes during a
	// multi-round tool exchange into a single write.
	persistDebounce = 1 * time.Second

	transcriptTTL = 30 * 24 * time.Hour
)

// TranscriptStore persists one transcript per workspace.
type TranscriptStore interface {
	Load(ctx context.Context, workspaceID int64) ([]model.ChatMessage, error)
	Save(ctx context.Context, workspaceID int64, messages []model.ChatMessage) error
	Delete(ctx context.Context, workspaceID int64) error
}

type redisTranscriptStore struct {
	client *redis.Client
}

// NewRedisTranscriptStore creates a TranscriptStore backed by Redis.
// Transcripts are keyed per workspace and never shared or merged across
// workspaces.
func NewRedisTranscriptStore(client *redis.Client) TranscriptStore {
	return &redisTranscriptStore{client: client}
}

func transcriptKey(workspaceID int64) string {
	return fmt.Sprintf("assistant:transcript:%d", workspaceID)
}

// Load returns the stored transcript, or nil for missing or corrupt data.
// Corruption is silently ignored: the session starts empty rather than
// failing.
func (s *redisTranscriptStore) Load(ctx context.Context, workspaceID int64) ([]model.ChatMessage, error) {
	data, err := s.client.Get(ctx, transcriptKey(workspaceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading transcript: %w", err)
	}

	var messages []model.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		slog.DebugContext(ctx, "discarding corrupt stored transcript",
			"workspace_id", workspaceID, "error", err)
		return nil, nil
	}
	return messages, nil
}

func (s *redisTranscriptStore) Save(ctx context.Context, workspaceID int64, messages []model.ChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	if err := s.client.Set(ctx, transcriptKey(workspaceID), data, transcriptTTL).Err(); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

func (s *redisTranscriptStore) Delete(ctx context.Context, workspaceID int64) error {
	if err := s.client.Del(ctx, transcriptKey(workspaceID)).Err(); err != nil {
		return fmt.Errorf("deleting transcript: %w", err)
	}
	return nil
}

// persistable returns the subset of messages worth storing or replaying:
// finished, non-empty turns with transient fields stripped.
func persistable(messages []model.ChatMessage) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.IsLoading || m.Content == "" {
			continue
		}
		m.IsLoading = false
		m.Status = ""
		out = append(out, m)
	}
	return out
}

// debouncer schedules a function with cancel-and-reschedule semantics:
// each Schedule call replaces any pending run, so rapid bursts collapse to
// one execution after the delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		fn := d.pending
		d.pending = nil
		d.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// Flush runs any pending function immediately.
func (d *debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop drops any pending run without executing it.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
}
