package service

import (
	"context"
	"errors"
	"sync"

	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/repository"
)

type stubProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	lastHist []model.ConversationEntry
}

func (p *stubProvider) GenerateFollowup(ctx context.Context, answer string, topic *model.Topic, history []model.ConversationEntry) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastHist = history
	return p.reply, p.err
}

// flakyRepo wraps a repository and fails selected operations on demand
type flakyRepo struct {
	repository.SessionRepository
	failRollback bool
	failSave     bool
}

var errInjected = errors.New("injected failure")

func (r *flakyRepo) Rollback(ctx context.Context, s *model.Session, keep int) error {
	if r.failRollback {
		return errInjected
	}
	return r.SessionRepository.Rollback(ctx, s, keep)
}

func (r *flakyRepo) Save(ctx context.Context, s *model.Session) error {
	if r.failSave {
		return errInjected
	}
	return r.SessionRepository.Save(ctx, s)
}

type recordedEvent struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []recordedEvent
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{sessionID, msgType, payload})
}

func (b *recordingBroadcaster) DisconnectSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, sessionID)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.msgType
	}
	return out
}

// scenarioTopics is the two-topic catalog used by the walkthrough tests
func scenarioTopics() []model.Topic {
	return []model.Topic{
		{Name: "school-moral", Scene: model.SceneSchool, EduType: model.EduMoral, Questions: []string{"Q1"}, Followups: []string{"F1"}},
		{Name: "home-intellectual", Scene: model.SceneHome, EduType: model.EduIntellectual, Questions: []string{"Q2"}, Followups: []string{"F2"}},
	}
}

func scenarioConfig() *config.InterviewConfig {
	cfg := config.DefaultInterviewConfig()
	cfg.TotalQuestions = 2
	cfg.MinAnswerLength = 10
	cfg.MaxDepthScore = 4
	cfg.DepthKeywords = []string{"specific"}
	return cfg
}

type testEnv struct {
	svc      *InterviewService
	repo     *flakyRepo
	undo     *MemoryUndoStack
	provider *stubProvider
	bc       *recordingBroadcaster
}

func newTestEnv(cfg *config.InterviewConfig, topics []model.Topic, provider *stubProvider) *testEnv {
	repo := &flakyRepo{SessionRepository: repository.NewMemorySessionRepo()}
	undo := NewMemoryUndoStack(cfg.UndoCapacity)
	var p FollowupProvider
	if provider != nil {
		p = provider
	}
	gen := NewFollowupGenerator(cfg, p, logger.Nop())
	svc := NewInterviewService(repo, topics, cfg, gen, undo, logger.Nop())
	bc := &recordingBroadcaster{}
	svc.SetBroadcaster(bc)
	return &testEnv{svc: svc, repo: repo, undo: undo, provider: provider, bc: bc}
}

// flakyUndo wraps an undo stack and fails Clear or Pop on demand
type flakyUndo struct {
	*MemoryUndoStack
	failClear bool
	failPop   bool
}

func (u *flakyUndo) Clear(ctx context.Context, sessionID string) error {
	if u.failClear {
		return errInjected
	}
	return u.MemoryUndoStack.Clear(ctx, sessionID)
}

func (u *flakyUndo) Pop(ctx context.Context, sessionID string) error {
	if u.failPop {
		return errInjected
	}
	return u.MemoryUndoStack.Pop(ctx, sessionID)
}

func newFlakyUndoEnv(cfg *config.InterviewConfig, topics []model.Topic) (*InterviewService, *flakyUndo) {
	repo := repository.NewMemorySessionRepo()
	undo := &flakyUndo{MemoryUndoStack: NewMemoryUndoStack(cfg.UndoCapacity)}
	gen := NewFollowupGenerator(cfg, nil, logger.Nop())
	return NewInterviewService(repo, topics, cfg, gen, undo, logger.Nop()), undo
}
