package service

import (
	"context"
	"fmt"

	"campusinterview/internal/catalog"
	"campusinterview/internal/model"
)

// ExportSession bundles the session log with its scene, dimension and
// follow-up distribution. Sessions without any entries are not exported.
func (s *InterviewService) ExportSession(ctx context.Context, id string) (*model.SessionExport, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptySession
	}

	out := &model.SessionExport{
		SessionID:  session.ID,
		UserName:   session.UserName,
		Status:     session.Status,
		StartedAt:  session.CreatedAt,
		EndedAt:    s.now().UTC(),
		Statistics: summarize(session.SelectedTopics, entries),
		Log:        entries,
	}
	if session.EndedAt != nil {
		out.EndedAt = *session.EndedAt
	}
	s.log.Info("session exported", "session_id", id, "entries", len(entries))
	return out, nil
}

func summarize(topics []model.Topic, entries []model.ConversationEntry) model.ExportStats {
	stats := model.ExportStats{
		TotalEntries: len(entries),
		Scenes:       make(map[model.Scene]int),
		EduTypes:     make(map[model.EduType]int),
	}
	for _, e := range entries {
		if t, ok := catalog.Find(topics, e.Topic); ok {
			stats.Scenes[t.Scene]++
			stats.EduTypes[t.EduType]++
		}
		if !e.QuestionType.IsFollowup() {
			continue
		}
		if e.IsAIGenerated {
			stats.Followups.AI++
		} else {
			stats.Followups.Preset++
		}
	}
	return stats
}
