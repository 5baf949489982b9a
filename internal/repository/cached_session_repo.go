package repository

import (
	"context"

	"campusinterview/internal/cache"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
)

// CachedSessionRepo fronts a SessionRepository with a TTL read cache. Every
// successful write overwrites or evicts the cached copy; cache failures are
// logged and never fail the call.
type CachedSessionRepo struct {
	SessionRepository
	cache cache.SessionCache
	log   *logger.Logger
}

func NewCachedSessionRepo(inner SessionRepository, c cache.SessionCache, log *logger.Logger) *CachedSessionRepo {
	return &CachedSessionRepo{SessionRepository: inner, cache: c, log: log}
}

func (r *CachedSessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	if s, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("session cache read failed", "session_id", id, "error", err)
	} else if s != nil {
		return s, nil
	}

	s, err := r.SessionRepository.Get(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	r.store(ctx, s)
	return s, nil
}

func (r *CachedSessionRepo) Save(ctx context.Context, session *model.Session) error {
	if err := r.SessionRepository.Save(ctx, session); err != nil {
		r.evict(ctx, session.ID)
		return err
	}
	r.store(ctx, session)
	return nil
}

func (r *CachedSessionRepo) Delete(ctx context.Context, id string) error {
	err := r.SessionRepository.Delete(ctx, id)
	r.evict(ctx, id)
	return err
}

func (r *CachedSessionRepo) Rollback(ctx context.Context, session *model.Session, keepEntries int) error {
	if err := r.SessionRepository.Rollback(ctx, session, keepEntries); err != nil {
		r.evict(ctx, session.ID)
		return err
	}
	r.store(ctx, session)
	return nil
}

func (r *CachedSessionRepo) store(ctx context.Context, s *model.Session) {
	if err := r.cache.Set(ctx, s); err != nil {
		r.log.Warn("session cache write failed", "session_id", s.ID, "error", err)
		r.evict(ctx, s.ID)
	}
}

func (r *CachedSessionRepo) evict(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("session cache evict failed", "session_id", id, "error", err)
	}
}
