package assistant

import (
	"context"
	"sync"
	"time"

	"taskdeck.app/assistant/common/llm"
	"taskdeck.app/assistant/core/config"
	"taskdeck.app/assistant/internal/model"
	"taskdeck.app/assistant/internal/repository"
)

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Model:          "mock-model",
		MaxTokens:      500,
		Temperature:    0.2,
		RequestTimeout: time.Second,
	}
}

type mockProjectStore struct {
	getByIDFn            func(ctx context.Context, id int64) (*model.Project, error)
	listActiveFn         func(ctx context.Context, workspaceID int64) ([]model.Project, error)
	createFn             func(ctx context.Context, project *model.Project) error
	createWithStatusesFn func(ctx context.Context, project *model.Project, statusNames []string) error
	updateFn             func(ctx context.Context, project *model.Project) error
}

func (m *mockProjectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProjectStore) ListActive(ctx context.Context, workspaceID int64) ([]model.Project, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, workspaceID)
	}
	return nil, nil
}

func (m *mockProjectStore) Create(ctx context.Context, project *model.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, project)
	}
	return nil
}

func (m *mockProjectStore) CreateWithStatuses(ctx context.Context, project *model.Project, statusNames []string) error {
	if m.createWithStatusesFn != nil {
		return m.createWithStatusesFn(ctx, project, statusNames)
	}
	return nil
}

func (m *mockProjectStore) Update(ctx context.Context, project *model.Project) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, project)
	}
	return nil
}

type mockStatusStore struct {
	listByProjectFn func(ctx context.Context, projectID int64) ([]model.ProjectStatus, error)
	createFn        func(ctx context.Context, status *model.ProjectStatus) error
	renameFn        func(ctx context.Context, projectID int64, from, to string) error
}

func (m *mockStatusStore) ListByProject(ctx context.Context, projectID int64) ([]model.ProjectStatus, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockStatusStore) Create(ctx context.Context, status *model.ProjectStatus) error {
	if m.createFn != nil {
		return m.createFn(ctx, status)
	}
	return nil
}

func (m *mockStatusStore) Rename(ctx context.Context, projectID int64, from, to string) error {
	if m.renameFn != nil {
		return m.renameFn(ctx, projectID, from, to)
	}
	return nil
}

type mockTaskStore struct {
	getByIDFn         func(ctx context.Context, id int64) (*model.Task, error)
	searchByTitleFn   func(ctx context.Context, projectIDs []int64, fragment string, limit int) ([]model.Task, error)
	listByProjectsFn  func(ctx context.Context, projectIDs []int64) ([]model.Task, error)
	countByProjectsFn func(ctx context.Context, projectIDs []int64) (int, error)
	listByAssigneeFn  func(ctx context.Context, projectIDs []int64, userID int64) ([]model.Task, error)
	createFn          func(ctx context.Context, task *model.Task) error
	updateFn          func(ctx context.Context, task *model.Task) error
	deleteFn          func(ctx context.Context, id int64) error
}

func (m *mockTaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockTaskStore) SearchByTitle(ctx context.Context, projectIDs []int64, fragment string, limit int) ([]model.Task, error) {
	if m.searchByTitleFn != nil {
		return m.searchByTitleFn(ctx, projectIDs, fragment, limit)
	}
	return nil, nil
}

func (m *mockTaskStore) ListByProjects(ctx context.Context, projectIDs []int64) ([]model.Task, error) {
	if m.listByProjectsFn != nil {
		return m.listByProjectsFn(ctx, projectIDs)
	}
	return nil, nil
}

func (m *mockTaskStore) CountByProjects(ctx context.Context, projectIDs []int64) (int, error) {
	if m.countByProjectsFn != nil {
		return m.countByProjectsFn(ctx, projectIDs)
	}
	return 0, nil
}

func (m *mockTaskStore) ListByAssignee(ctx context.Context, projectIDs []int64, userID int64) ([]model.Task, error) {
	if m.listByAssigneeFn != nil {
		return m.listByAssigneeFn(ctx, projectIDs, userID)
	}
	return nil, nil
}

func (m *mockTaskStore) Create(ctx context.Context, task *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Update(ctx context.Context, task *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockMemberStore struct {
	listByWorkspaceFn    func(ctx context.Context, workspaceID int64) ([]model.Membership, error)
	getProfilesFn        func(ctx context.Context, userIDs []int64) ([]model.Profile, error)
	findProfileByEmailFn func(ctx context.Context, email string) (*model.Profile, error)
	addFn                func(ctx context.Context, membership *model.Membership) error
	updateRoleFn         func(ctx context.Context, workspaceID, userID int64, role model.MemberRole) error
}

func (m *mockMemberStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Membership, error) {
	if m.listByWorkspaceFn != nil {
		return m.listByWorkspaceFn(ctx, workspaceID)
	}
	return nil, nil
}

func (m *mockMemberStore) GetProfiles(ctx context.Context, userIDs []int64) ([]model.Profile, error) {
	if m.getProfilesFn != nil {
		return m.getProfilesFn(ctx, userIDs)
	}
	return nil, nil
}

func (m *mockMemberStore) FindProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	if m.findProfileByEmailFn != nil {
		return m.findProfileByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockMemberStore) Add(ctx context.Context, membership *model.Membership) error {
	if m.addFn != nil {
		return m.addFn(ctx, membership)
	}
	return nil
}

func (m *mockMemberStore) UpdateRole(ctx context.Context, workspaceID, userID int64, role model.MemberRole) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, workspaceID, userID, role)
	}
	return nil
}

type mockInvitationStore struct {
	createFn      func(ctx context.Context, inv *model.Invitation) error
	findPendingFn func(ctx context.Context, workspaceID int64, email string) (*model.Invitation, error)
}

func (m *mockInvitationStore) Create(ctx context.Context, inv *model.Invitation) error {
	if m.createFn != nil {
		return m.createFn(ctx, inv)
	}
	return nil
}

func (m *mockInvitationStore) FindPending(ctx context.Context, workspaceID int64, email string) (*model.Invitation, error) {
	if m.findPendingFn != nil {
		return m.findPendingFn(ctx, workspaceID, email)
	}
	return nil, repository.ErrNotFound
}

type mockTimeSessionStore struct {
	listCompletedSinceFn func(ctx context.Context, projectIDs []int64, since time.Time) ([]model.TimeSession, error)
}

func (m *mockTimeSessionStore) ListCompletedSince(ctx context.Context, projectIDs []int64, since time.Time) ([]model.TimeSession, error) {
	if m.listCompletedSinceFn != nil {
		return m.listCompletedSinceFn(ctx, projectIDs, since)
	}
	return nil, nil
}

type mockCommentStore struct {
	listByTaskFn func(ctx context.Context, taskID int64, limit int) ([]model.Comment, error)
}

func (m *mockCommentStore) ListByTask(ctx context.Context, taskID int64, limit int) ([]model.Comment, error) {
	if m.listByTaskFn != nil {
		return m.listByTaskFn(ctx, taskID, limit)
	}
	return nil, nil
}

type mockActivityStore struct {
	listRecentFn func(ctx context.Context, workspaceID int64, limit int) ([]model.ActivityLog, error)
}

func (m *mockActivityStore) ListRecent(ctx context.Context, workspaceID int64, limit int) ([]model.ActivityLog, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, workspaceID, limit)
	}
	return nil, nil
}

// mockStores bundles fresh mocks into the Stores shape the tools consume.
type mockStores struct {
	projects     *mockProjectStore
	statuses     *mockStatusStore
	tasks        *mockTaskStore
	members      *mockMemberStore
	invitations  *mockInvitationStore
	timeSessions *mockTimeSessionStore
	comments     *mockCommentStore
	activity     *mockActivityStore
}

func newMockStores() *mockStores {
	return &mockStores{
		projects:     &mockProjectStore{},
		statuses:     &mockStatusStore{},
		tasks:        &mockTaskStore{},
		members:      &mockMemberStore{},
		invitations:  &mockInvitationStore{},
		timeSessions: &mockTimeSessionStore{},
		comments:     &mockCommentStore{},
		activity:     &mockActivityStore{},
	}
}

func (m *mockStores) stores() *repository.Stores {
	return &repository.Stores{
		Projects:     m.projects,
		Statuses:     m.statuses,
		Tasks:        m.tasks,
		Members:      m.members,
		Invitations:  m.invitations,
		TimeSessions: m.timeSessions,
		Comments:     m.comments,
		Activity:     m.activity,
	}
}

// mockAgentClient replays scripted responses in order. Once the script is
// exhausted it keeps returning the last entry, so "always calls tools"
// loops are easy to express with a single scripted response.
type mockAgentClient struct {
	mu        sync.Mutex
	responses []*llm.AgentResponse
	err       error
	calls     []llm.AgentRequest
	onCall    func(n int) // invoked with the 1-based call number
}

func (m *mockAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.onCall != nil {
		m.onCall(len(m.calls))
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &llm.AgentResponse{Content: "ok", FinishReason: "stop"}, nil
	}

	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *mockAgentClient) Model() string { return "mock-model" }

func (m *mockAgentClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// memTranscriptStore is an in-memory TranscriptStore that counts writes.
type memTranscriptStore struct {
	mu        sync.Mutex
	data      map[int64][]model.ChatMessage
	saveCount int
	loadErr   error
}

func newMemTranscriptStore() *memTranscriptStore {
	return &memTranscriptStore{data: make(map[int64][]model.ChatMessage)}
}

func (s *memTranscriptStore) Load(_ context.Context, workspaceID int64) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data[workspaceID], nil
}

func (s *memTranscriptStore) Save(_ context.Context, workspaceID int64, messages []model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[workspaceID] = messages
	s.saveCount++
	return nil
}

func (s *memTranscriptStore) Delete(_ context.Context, workspaceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, workspaceID)
	return nil
}

func (s *memTranscriptStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

func (s *memTranscriptStore) stored(workspaceID int64) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[workspaceID]
}
