package repository

import (
	"context"
	"sync"

	"campusinterview/internal/model"
)

type memorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	entries  map[string][]model.ConversationEntry
}

// NewMemorySessionRepo returns a process-local repository
func NewMemorySessionRepo() SessionRepository {
	return &memorySessionRepo{
		sessions: make(map[string]*model.Session),
		entries:  make(map[string][]model.ConversationEntry),
	}
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *memorySessionRepo) Save(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.entries, id)
	return nil
}

func (r *memorySessionRepo) ListEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ConversationEntry(nil), r.entries[sessionID]...), nil
}

func (r *memorySessionRepo) AppendEntry(ctx context.Context, sessionID string, entry model.ConversationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sessionID] = append(r.entries[sessionID], entry)
	return nil
}

func (r *memorySessionRepo) DeleteLastEntry(ctx context.Context, sessionID string) (*model.ConversationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.entries[sessionID]
	if len(log) == 0 {
		return nil, nil
	}
	last := log[len(log)-1]
	r.entries[sessionID] = log[:len(log)-1]
	return &last, nil
}

func (r *memorySessionRepo) Rollback(ctx context.Context, session *model.Session, keepEntries int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.entries[session.ID]
	if keepEntries < 0 || keepEntries > len(log) {
		return &ErrInvalidRollback{Keep: keepEntries, Current: len(log)}
	}
	r.entries[session.ID] = log[:keepEntries:keepEntries]
	r.sessions[session.ID] = session.Clone()
	return nil
}
