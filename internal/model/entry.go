package model

import "time"

// QuestionType tags what kind of prompt an entry answered
type QuestionType string

const (
	QuestionCore            QuestionType = "core"
	QuestionFollowup        QuestionType = "followup"
	QuestionFollowupSkipped QuestionType = "followup-skipped"
)

// IsFollowup reports whether the entry belongs to a follow-up exchange
func (q QuestionType) IsFollowup() bool {
	return q == QuestionFollowup || q == QuestionFollowupSkipped
}

// ConversationEntry is one append-only log line of a session
type ConversationEntry struct {
	Timestamp     time.Time    `json:"timestamp" bson:"timestamp"`
	Topic         string       `json:"topic" bson:"topic"`
	QuestionType  QuestionType `json:"questionType" bson:"questionType"`
	Question      string       `json:"question" bson:"question"`
	Answer        string       `json:"answer" bson:"answer"`
	DepthScore    int          `json:"depthScore" bson:"depthScore"`
	IsAIGenerated bool         `json:"isAiGenerated" bson:"isAiGenerated"`
}
