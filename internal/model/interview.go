package model

import "time"

// FollowupDecision is the outcome of the follow-up policy for one answer
type FollowupDecision struct {
	NeedFollowup     bool   `json:"needFollowup"`
	FollowupQuestion string `json:"followupQuestion,omitempty"`
	IsAIGenerated    bool   `json:"isAiGenerated"`
}

// InterviewResult is returned to the caller after every turn
type InterviewResult struct {
	AssistantMessage string `json:"assistantMessage"`
	IsFinished       bool   `json:"isFinished"`
	NeedFollowup     bool   `json:"needFollowup"`
	IsAIGenerated    bool   `json:"isAiGenerated"`
	QuestionIndex    int    `json:"questionIndex"`
	TotalQuestions   int    `json:"totalQuestions"`
}

type MessageRole string

const (
	RoleAssistant MessageRole = "assistant"
	RoleUser      MessageRole = "user"
)

// Message is one line of the rendered transcript
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"` // unix millis
}

// StartSessionRequest is the body of POST /v1/sessions
type StartSessionRequest struct {
	UserName string   `json:"userName"`
	Topics   []string `json:"topics,omitempty"`
}

// AnswerRequest is the body of POST /v1/sessions/{id}/messages
type AnswerRequest struct {
	Text string `json:"text"`
}

// SessionEvent is pushed to live observers after each committed turn
type SessionEvent struct {
	SessionID     string        `json:"sessionId"`
	State         SessionState  `json:"state"`
	QuestionIndex int           `json:"questionIndex"`
	Topic         string        `json:"topic,omitempty"`
	Message       string        `json:"message,omitempty"`
	Status        SessionStatus `json:"status"`
}

// FollowupStats splits follow-up entries by where the question came from
type FollowupStats struct {
	Preset int `json:"preset"`
	AI     int `json:"ai"`
}

// ExportStats summarizes a session log
type ExportStats struct {
	TotalEntries int             `json:"totalEntries"`
	Scenes       map[Scene]int   `json:"sceneDistribution"`
	EduTypes     map[EduType]int `json:"eduDistribution"`
	Followups    FollowupStats   `json:"followupDistribution"`
}

// SessionExport is the downloadable record of one interview
type SessionExport struct {
	SessionID  string              `json:"sessionId"`
	UserName   string              `json:"userName"`
	Status     SessionStatus       `json:"status"`
	StartedAt  time.Time           `json:"startedAt"`
	EndedAt    time.Time           `json:"endedAt"`
	Statistics ExportStats         `json:"statistics"`
	Log        []ConversationEntry `json:"conversationLog"`
}
