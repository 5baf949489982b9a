package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// Event types pushed to session observers
const (
	EventAnswerRecorded   = "answer_recorded"
	EventFollowupIssued   = "followup_issued"
	EventQuestionAdvanced = "question_advanced"
	EventQuestionSkipped  = "question_skipped"
	EventSessionCompleted = "session_completed"
	EventSessionUndone    = "session_undone"
	EventSessionRestarted = "session_restarted"
)
