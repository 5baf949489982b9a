package model

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// SessionState is the position of a session in the interview state machine
type SessionState string

const (
	StateCorePending     SessionState = "core_pending"
	StateFollowupPending SessionState = "followup_pending"
	StateFinished        SessionState = "finished"
)

// Session is the mutable per-interview record
type Session struct {
	ID                 string        `json:"id" bson:"_id"`
	UserName           string        `json:"userName" bson:"userName"`
	Status             SessionStatus `json:"status" bson:"status"`
	CurrentQuestionIdx int           `json:"currentQuestionIdx" bson:"currentQuestionIdx"`
	SelectedTopics     []Topic       `json:"selectedTopics" bson:"selectedTopics"`

	// Follow-up sub-state
	IsFollowup              bool   `json:"isFollowup" bson:"isFollowup"`
	CurrentFollowupCount    int    `json:"currentFollowupCount" bson:"currentFollowupCount"`
	CurrentFollowupQuestion string `json:"currentFollowupQuestion" bson:"currentFollowupQuestion"`
	CurrentFollowupIsAI     bool   `json:"currentFollowupIsAi" bson:"currentFollowupIsAi"`

	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// TotalQuestions is the number of core questions this session walks through
func (s *Session) TotalQuestions() int {
	return len(s.SelectedTopics)
}

func (s *Session) IsFinished() bool {
	return s.Status == SessionCompleted
}

// State derives the state machine position from the stored fields
func (s *Session) State() SessionState {
	switch {
	case s.IsFinished():
		return StateFinished
	case s.IsFollowup:
		return StateFollowupPending
	default:
		return StateCorePending
	}
}

// CurrentTopic returns the topic under the question pointer, or nil past the end
func (s *Session) CurrentTopic() *Topic {
	if s.CurrentQuestionIdx < 0 || s.CurrentQuestionIdx >= len(s.SelectedTopics) {
		return nil
	}
	return &s.SelectedTopics[s.CurrentQuestionIdx]
}

// ClearFollowup drops the follow-up sub-state
func (s *Session) ClearFollowup() {
	s.IsFollowup = false
	s.CurrentFollowupCount = 0
	s.CurrentFollowupQuestion = ""
	s.CurrentFollowupIsAI = false
}

// EnterFollowup records a newly issued follow-up and bumps the counter
func (s *Session) EnterFollowup(question string, isAI bool) {
	s.IsFollowup = true
	s.CurrentFollowupCount++
	s.CurrentFollowupQuestion = question
	s.CurrentFollowupIsAI = isAI
}

// Advance moves the pointer to the next core question and completes the
// session when the pointer runs past the last selected topic.
func (s *Session) Advance(now time.Time) {
	s.ClearFollowup()
	s.CurrentQuestionIdx++
	if s.CurrentQuestionIdx >= s.TotalQuestions() {
		s.CurrentQuestionIdx = s.TotalQuestions()
		s.Finish(now)
	}
}

func (s *Session) Finish(now time.Time) {
	s.Status = SessionCompleted
	s.EndedAt = &now
}

// Reset rewinds the session to the first core question
func (s *Session) Reset() {
	s.ClearFollowup()
	s.CurrentQuestionIdx = 0
	s.Status = SessionActive
	s.EndedAt = nil
}

// Clone returns a deep copy safe to mutate independently
func (s *Session) Clone() *Session {
	c := *s
	c.SelectedTopics = make([]Topic, len(s.SelectedTopics))
	copy(c.SelectedTopics, s.SelectedTopics)
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return &c
}
