package repository

import (
	"context"
	"fmt"

	"campusinterview/internal/model"
)

// SessionRepository persists sessions and their append-only conversation log.
// Get returns nil, nil when the session does not exist.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error

	ListEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error)
	AppendEntry(ctx context.Context, sessionID string, entry model.ConversationEntry) error
	// DeleteLastEntry removes and returns the newest entry, or nil if the log is empty
	DeleteLastEntry(ctx context.Context, sessionID string) (*model.ConversationEntry, error)

	// Rollback trims the log to its first keepEntries entries and overwrites
	// the session record, as one atomic step.
	Rollback(ctx context.Context, session *model.Session, keepEntries int) error
}

// ErrInvalidRollback is returned when keepEntries is outside [0, len(log)]
type ErrInvalidRollback struct {
	Keep    int
	Current int
}

func (e *ErrInvalidRollback) Error() string {
	return fmt.Sprintf("invalid rollback target %d, log has %d entries", e.Keep, e.Current)
}
