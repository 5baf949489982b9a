package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusinterview/internal/catalog"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/repository"
)

// FinishedMessage is returned once the last question has been handled
const FinishedMessage = "The interview is complete. Thank you for taking part!"

// InterviewService drives one turn at a time through the session state machine
type InterviewService struct {
	repo        repository.SessionRepository
	topics      []model.Topic
	cfg         *config.InterviewConfig
	processor   *AnswerProcessor
	followups   *FollowupGenerator
	undo        UndoStack
	broadcaster Broadcaster
	locks       *sessionLocks
	log         *logger.Logger
	now         func() time.Time
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	repo repository.SessionRepository,
	topics []model.Topic,
	cfg *config.InterviewConfig,
	followups *FollowupGenerator,
	undo UndoStack,
	log *logger.Logger,
) *InterviewService {
	return &InterviewService{
		repo:      repo,
		topics:    topics,
		cfg:       cfg,
		processor: NewAnswerProcessor(cfg),
		followups: followups,
		undo:      undo,
		locks:     newSessionLocks(),
		log:       log,
		now:       time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Topics returns the catalog the service selects from
func (s *InterviewService) Topics() []model.Topic {
	return s.topics
}

// StartSession creates a session and fixes its topic list. Named topics are
// used first, in request order; the remainder comes from the selector.
func (s *InterviewService) StartSession(ctx context.Context, userName string, topicNames []string) (*model.Session, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		userName = s.cfg.DefaultUserName
	}
	id := uuid.New()
	now := s.now().UTC()

	selected := s.selectTopics(topicNames, sessionSeed(id.String()))
	if len(selected) == 0 {
		return nil, ErrInvalidTopic
	}

	session := &model.Session{
		ID:             id.String(),
		UserName:       userName,
		Status:         model.SessionActive,
		SelectedTopics: selected,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	names := make([]string, len(selected))
	for i, t := range selected {
		names[i] = t.Name
	}
	s.log.Info("session started", "session_id", session.ID, "user", userName, "topics", names)
	return session, nil
}

func (s *InterviewService) selectTopics(names []string, seed uint64) []model.Topic {
	total := s.cfg.TotalQuestions
	base := func() []model.Topic {
		return SelectTopics(s.topics, model.Scenes, model.EduTypes, total, seed)
	}
	if len(names) == 0 {
		return base()
	}

	var out []model.Topic
	have := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || have[n] {
			continue
		}
		t, err := s.LookupTopic(n)
		if err != nil {
			s.log.Warn("ignoring requested topic", "error", err)
			continue
		}
		out = append(out, t)
		have[n] = true
	}
	if len(out) >= total {
		return out[:total]
	}

	for _, t := range base() {
		if len(out) >= total {
			break
		}
		if !have[t.Name] {
			out = append(out, t)
			have[t.Name] = true
		}
	}
	return out
}

// GetSession returns the session or ErrSessionNotFound
func (s *InterviewService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession removes the session, its log and its undo history
func (s *InterviewService) DeleteSession(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}
	if err := s.undo.Clear(ctx, id); err != nil {
		return fmt.Errorf("failed to clear undo history: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(id)
	}
	s.log.Info("session deleted", "session_id", id)
	return nil
}

// ProcessAnswer records an answer for the pending question and moves the
// session to its next state.
func (s *InterviewService) ProcessAnswer(ctx context.Context, id, answer string) (*model.InterviewResult, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsFinished() {
		return nil, ErrSessionCompleted
	}
	topic := session.CurrentTopic()
	if topic == nil {
		return s.finishDangling(ctx, session)
	}

	history, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	snap := model.CaptureSnapshot(session, len(history))

	var entry model.ConversationEntry
	if session.IsFollowup {
		entry = s.processor.ProcessFollowupAnswer(answer, topic, session.CurrentFollowupQuestion, session.CurrentFollowupIsAI)
	} else {
		entry = s.processor.ProcessCoreAnswer(answer, topic, s.corePrompt(session))
		s.log.Debug("core answer recorded", "session_id", id, "topic", topic.Name,
			"depth", entry.DepthScore, "keywords", s.processor.ExtractKeywords(entry.Answer))
	}

	decision := s.followups.ShouldFollowup(ctx, answer, topic, append(history, entry),
		session.CurrentFollowupCount, entry.DepthScore, followupSeed(session))

	next := session.Clone()
	now := s.now().UTC()
	if decision.NeedFollowup {
		next.EnterFollowup(decision.FollowupQuestion, decision.IsAIGenerated)
	} else {
		next.Advance(now)
	}
	next.UpdatedAt = now

	if err := s.commit(ctx, next, entry, snap); err != nil {
		return nil, err
	}

	s.broadcast(next, EventAnswerRecorded, entry.Answer)
	result := s.result(next)
	switch {
	case decision.NeedFollowup:
		s.log.Info("follow-up issued", "session_id", id, "topic", topic.Name,
			"count", next.CurrentFollowupCount, "ai", decision.IsAIGenerated)
		s.broadcast(next, EventFollowupIssued, decision.FollowupQuestion)
	case next.IsFinished():
		s.log.Info("interview finished", "session_id", id)
		s.broadcast(next, EventSessionCompleted, FinishedMessage)
	default:
		s.broadcast(next, EventQuestionAdvanced, result.AssistantMessage)
	}
	return result, nil
}

// SkipQuestion logs a skip sentinel for the pending question and moves to the
// next core question.
func (s *InterviewService) SkipQuestion(ctx context.Context, id string) (*model.InterviewResult, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsFinished() {
		return nil, ErrSessionCompleted
	}
	topic := session.CurrentTopic()
	if topic == nil {
		return s.finishDangling(ctx, session)
	}

	history, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	snap := model.CaptureSnapshot(session, len(history))
	entry := s.processor.SkipEntry(session, topic, s.pendingPrompt(session))

	next := session.Clone()
	now := s.now().UTC()
	next.Advance(now)
	next.UpdatedAt = now

	if err := s.commit(ctx, next, entry, snap); err != nil {
		return nil, err
	}

	s.log.Info("question skipped", "session_id", id, "topic", topic.Name, "type", entry.QuestionType)
	s.broadcast(next, EventQuestionSkipped, entry.Question)
	result := s.result(next)
	if next.IsFinished() {
		s.log.Info("interview finished", "session_id", id)
		s.broadcast(next, EventSessionCompleted, FinishedMessage)
	} else {
		s.broadcast(next, EventQuestionAdvanced, result.AssistantMessage)
	}
	return result, nil
}

// UndoLast reverts the most recent answer or skip. The snapshot is only
// dropped once the repository has rolled back both the log and the session.
// A snapshot that is not behind the current log was already applied or
// predates a restart, so it is discarded.
func (s *InterviewService) UndoLast(ctx context.Context, id string) (*model.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var snap *model.Snapshot
	for {
		snap, err = s.undo.Peek(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read undo history: %w", err)
		}
		if snap == nil {
			return nil, ErrNothingToUndo
		}
		if snap.EntryCount < len(entries) {
			break
		}
		s.log.Warn("discarding stale undo snapshot", "session_id", id,
			"keep", snap.EntryCount, "entries", len(entries))
		if err := s.undo.Pop(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to drop stale undo snapshot: %w", err)
		}
	}

	restored := snap.RestoreInto(session)
	restored.UpdatedAt = s.now().UTC()
	if err := s.repo.Rollback(ctx, restored, snap.EntryCount); err != nil {
		s.log.Error("rollback failed", "session_id", id, "keep", snap.EntryCount, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRollbackFailed, err)
	}
	if err := s.undo.Pop(ctx, id); err != nil {
		// the next undo sees this snapshot as stale and skips it
		s.log.Warn("failed to pop undo snapshot", "session_id", id, "error", err)
	}

	s.log.Info("turn undone", "session_id", id, "idx", restored.CurrentQuestionIdx, "entries", snap.EntryCount)
	s.broadcast(restored, EventSessionUndone, s.pendingPrompt(restored))
	return restored, nil
}

// Restart wipes the conversation and rewinds to the first question. It is
// valid in any state.
func (s *InterviewService) Restart(ctx context.Context, id string) (*model.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.undo.Clear(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to clear undo history: %w", err)
	}
	reset := session.Clone()
	reset.Reset()
	reset.UpdatedAt = s.now().UTC()
	if err := s.repo.Rollback(ctx, reset, 0); err != nil {
		return nil, fmt.Errorf("failed to restart session: %w", err)
	}

	s.log.Info("session restarted", "session_id", id)
	s.broadcast(reset, EventSessionRestarted, s.pendingPrompt(reset))
	return reset, nil
}

// GetMessages renders the log as alternating assistant/user messages,
// followed by the pending prompt while the interview is still running.
func (s *InterviewService) GetMessages(ctx context.Context, id string) ([]model.Message, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	messages := make([]model.Message, 0, 2*len(entries)+1)
	for _, e := range entries {
		ts := e.Timestamp.UnixMilli()
		messages = append(messages,
			model.Message{Role: model.RoleAssistant, Content: e.Question, Timestamp: ts},
			model.Message{Role: model.RoleUser, Content: e.Answer, Timestamp: ts},
		)
	}
	if !session.IsFinished() {
		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   s.pendingPrompt(session),
			Timestamp: s.now().UnixMilli(),
		})
	}
	return messages, nil
}

// UndoDepth reports how many turns can currently be undone
func (s *InterviewService) UndoDepth(ctx context.Context, id string) (int, error) {
	n, err := s.undo.Len(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to read undo history: %w", err)
	}
	return n, nil
}

// PendingPrompt returns what the user is currently being asked
func (s *InterviewService) PendingPrompt(session *model.Session) string {
	return s.pendingPrompt(session)
}

// commit appends the entry and saves the session. A failed save removes the
// entry again so the turn leaves no trace.
func (s *InterviewService) commit(ctx context.Context, next *model.Session, entry model.ConversationEntry, snap *model.Snapshot) error {
	if err := s.repo.AppendEntry(ctx, next.ID, entry); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	if err := s.repo.Save(ctx, next); err != nil {
		if _, derr := s.repo.DeleteLastEntry(ctx, next.ID); derr != nil {
			s.log.Error("failed to revert entry after save error", "session_id", next.ID, "error", derr)
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := s.undo.Push(ctx, next.ID, snap); err != nil {
		s.log.Warn("failed to record undo snapshot", "session_id", next.ID, "error", err)
	}
	return nil
}

// finishDangling completes a session whose pointer already ran past the end
func (s *InterviewService) finishDangling(ctx context.Context, session *model.Session) (*model.InterviewResult, error) {
	next := session.Clone()
	now := s.now().UTC()
	next.Finish(now)
	next.UpdatedAt = now
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.broadcast(next, EventSessionCompleted, FinishedMessage)
	return s.result(next), nil
}

func (s *InterviewService) result(session *model.Session) *model.InterviewResult {
	return &model.InterviewResult{
		AssistantMessage: s.pendingPrompt(session),
		IsFinished:       session.IsFinished(),
		NeedFollowup:     session.IsFollowup,
		IsAIGenerated:    session.IsFollowup && session.CurrentFollowupIsAI,
		QuestionIndex:    session.CurrentQuestionIdx,
		TotalQuestions:   session.TotalQuestions(),
	}
}

func (s *InterviewService) pendingPrompt(session *model.Session) string {
	if session.IsFinished() {
		return FinishedMessage
	}
	if session.IsFollowup {
		if session.CurrentFollowupQuestion == "" {
			return s.cfg.DefaultFollowup
		}
		return session.CurrentFollowupQuestion
	}
	if session.CurrentTopic() == nil {
		return FinishedMessage
	}
	return s.corePrompt(session)
}

func (s *InterviewService) corePrompt(session *model.Session) string {
	return FormatCoreQuestion(session.CurrentQuestionIdx, session.TotalQuestions(), session.CurrentTopic())
}

func (s *InterviewService) broadcast(session *model.Session, msgType, message string) {
	if s.broadcaster == nil {
		return
	}
	ev := model.SessionEvent{
		SessionID:     session.ID,
		State:         session.State(),
		QuestionIndex: session.CurrentQuestionIdx,
		Message:       message,
		Status:        session.Status,
	}
	if t := session.CurrentTopic(); t != nil {
		ev.Topic = t.Name
	}
	s.broadcaster.BroadcastToSession(session.ID, msgType, ev)
}

// FormatCoreQuestion renders "[Question i/N] <topic>:\n<question>"
func FormatCoreQuestion(idx, total int, topic *model.Topic) string {
	return fmt.Sprintf("[Question %d/%d] %s:\n%s", idx+1, total, topic.Name, topic.CoreQuestion())
}

// LookupTopic finds a catalog topic by name
func (s *InterviewService) LookupTopic(name string) (model.Topic, error) {
	t, ok := catalog.Find(s.topics, name)
	if !ok {
		return model.Topic{}, fmt.Errorf("%w: %s", ErrInvalidTopic, name)
	}
	return t, nil
}

// IsClientError reports whether err is caused by the caller rather than the system
func IsClientError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrNothingToUndo) ||
		errors.Is(err, ErrInvalidTopic) ||
		errors.Is(err, ErrEmptySession)
}

// sessionSeed derives a stable selection seed from the session id
func sessionSeed(id string) uint64 {
	if u, err := uuid.Parse(id); err == nil {
		return uint64(binary.BigEndian.Uint32(u[12:16]))
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

// followupSeed varies the preset choice per question and per follow-up round
func followupSeed(session *model.Session) uint64 {
	return sessionSeed(session.ID) ^ uint64(session.CurrentQuestionIdx)<<32 ^ uint64(session.CurrentFollowupCount)
}
