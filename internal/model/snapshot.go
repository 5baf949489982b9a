package model

import "time"

// Snapshot is the pre-turn state captured so the turn can be undone
type Snapshot struct {
	CurrentQuestionIdx      int           `json:"currentQuestionIdx"`
	IsFollowup              bool          `json:"isFollowup"`
	CurrentFollowupCount    int           `json:"currentFollowupCount"`
	CurrentFollowupQuestion string        `json:"currentFollowupQuestion"`
	CurrentFollowupIsAI     bool          `json:"currentFollowupIsAi"`
	Status                  SessionStatus `json:"status"`
	EndedAt                 *time.Time    `json:"endedAt,omitempty"`
	EntryCount              int           `json:"entryCount"`
	CapturedAt              time.Time     `json:"capturedAt"`
}

// CaptureSnapshot records the mutable fields of s plus the current log length
func CaptureSnapshot(s *Session, entryCount int) *Snapshot {
	snap := &Snapshot{
		CurrentQuestionIdx:      s.CurrentQuestionIdx,
		IsFollowup:              s.IsFollowup,
		CurrentFollowupCount:    s.CurrentFollowupCount,
		CurrentFollowupQuestion: s.CurrentFollowupQuestion,
		CurrentFollowupIsAI:     s.CurrentFollowupIsAI,
		Status:                  s.Status,
		EntryCount:              entryCount,
		CapturedAt:              time.Now(),
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		snap.EndedAt = &t
	}
	return snap
}

// RestoreInto returns a copy of s with the snapshot's fields written back
func (snap *Snapshot) RestoreInto(s *Session) *Session {
	out := s.Clone()
	out.CurrentQuestionIdx = snap.CurrentQuestionIdx
	out.IsFollowup = snap.IsFollowup
	out.CurrentFollowupCount = snap.CurrentFollowupCount
	out.CurrentFollowupQuestion = snap.CurrentFollowupQuestion
	out.CurrentFollowupIsAI = snap.CurrentFollowupIsAI
	out.Status = snap.Status
	out.EndedAt = nil
	if snap.Status == SessionCompleted && snap.EndedAt != nil {
		t := *snap.EndedAt
		out.EndedAt = &t
	}
	return out
}
