package handler_test

import (
	"context"
	"io"

	"taskdeck.app/assistant/internal/http/handler"
	"taskdeck.app/assistant/internal/model"
)

type mockConversation struct {
	sendFn     func(ctx context.Context, actingUserID int64, text string)
	retryFn    func(ctx context.Context)
	abortFn    func()
	clearFn    func(ctx context.Context) error
	messagesFn func() []model.ChatMessage
	canRetryFn func() bool
}

func (m *mockConversation) SendMessage(ctx context.Context, actingUserID int64, text string) {
	if m.sendFn != nil {
		m.sendFn(ctx, actingUserID, text)
	}
}

func (m *mockConversation) RetryLastMessage(ctx context.Context) {
	if m.retryFn != nil {
		m.retryFn(ctx)
	}
}

func (m *mockConversation) Abort() {
	if m.abortFn != nil {
		m.abortFn()
	}
}

func (m *mockConversation) ClearMessages(ctx context.Context) error {
	if m.clearFn != nil {
		return m.clearFn(ctx)
	}
	return nil
}

func (m *mockConversation) Messages() []model.ChatMessage {
	if m.messagesFn != nil {
		return m.messagesFn()
	}
	return nil
}

func (m *mockConversation) CanRetry() bool {
	if m.canRetryFn != nil {
		return m.canRetryFn()
	}
	return false
}

type mockSessionHub struct {
	conv         *mockConversation
	workspaceIDs []int64
}

func (m *mockSessionHub) Conversation(_ context.Context, workspaceID int64) handler.Conversation {
	m.workspaceIDs = append(m.workspaceIDs, workspaceID)
	return m.conv
}

type mockTranscriber struct {
	transcribeFn func(ctx context.Context, audio io.Reader, filename string) (string, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if m.transcribeFn != nil {
		return m.transcribeFn(ctx, audio, filename)
	}
	return "", nil
}
