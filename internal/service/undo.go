package service

import (
	"context"
	"sync"

	"campusinterview/internal/model"
)

// UndoStack holds per-session snapshots, newest first, bounded in size.
// Peek returns nil, nil when there is nothing to undo.
type UndoStack interface {
	Push(ctx context.Context, sessionID string, snap *model.Snapshot) error
	Peek(ctx context.Context, sessionID string) (*model.Snapshot, error)
	Pop(ctx context.Context, sessionID string) error
	Clear(ctx context.Context, sessionID string) error
	Len(ctx context.Context, sessionID string) (int, error)
}

// MemoryUndoStack keeps snapshots in process memory and evicts the oldest
// snapshot once capacity is reached.
type MemoryUndoStack struct {
	mu       sync.Mutex
	capacity int
	stacks   map[string][]*model.Snapshot
}

var _ UndoStack = (*MemoryUndoStack)(nil)

func NewMemoryUndoStack(capacity int) *MemoryUndoStack {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryUndoStack{
		capacity: capacity,
		stacks:   make(map[string][]*model.Snapshot),
	}
}

func (m *MemoryUndoStack) Push(ctx context.Context, sessionID string, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := append(m.stacks[sessionID], snap)
	if len(st) > m.capacity {
		st = append([]*model.Snapshot(nil), st[len(st)-m.capacity:]...)
	}
	m.stacks[sessionID] = st
	return nil
}

func (m *MemoryUndoStack) Peek(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stacks[sessionID]
	if len(st) == 0 {
		return nil, nil
	}
	return st[len(st)-1], nil
}

func (m *MemoryUndoStack) Pop(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stacks[sessionID]
	if len(st) == 0 {
		return nil
	}
	if len(st) == 1 {
		delete(m.stacks, sessionID)
		return nil
	}
	m.stacks[sessionID] = st[:len(st)-1]
	return nil
}

func (m *MemoryUndoStack) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stacks, sessionID)
	return nil
}

func (m *MemoryUndoStack) Len(ctx context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stacks[sessionID]), nil
}
