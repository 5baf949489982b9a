package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"campusinterview/internal/model"
)

const followupSystemPrompt = "You are a warm, curious interviewer talking with a university student. " +
	"Ask exactly one short follow-up question that invites a concrete example, feeling or reflection. " +
	"Reply with the question only, no preface."

var toneGuide = map[model.EduType]string{
	model.EduMoral:        "gentle and respectful, focused on values and choices",
	model.EduIntellectual: "curious and encouraging, focused on how they think and learn",
	model.EduPhysical:     "energetic and friendly, focused on habits and how they felt",
	model.EduAesthetic:    "appreciative and open, focused on what moved them",
	model.EduLabor:        "practical and sincere, focused on what they actually did",
}

const defaultTone = "professional yet friendly, like a journalist"

// BuildFollowupPrompt renders the user prompt sent to the model for one answer
func BuildFollowupPrompt(answer string, topic *model.Topic, history []model.ConversationEntry) string {
	tone, ok := toneGuide[topic.EduType]
	if !ok {
		tone = defaultTone
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dimension: %s education\n", topic.EduType)
	fmt.Fprintf(&b, "Setting: %s\n", topic.Scene)
	fmt.Fprintf(&b, "Original question: %s\n", topic.CoreQuestion())
	b.WriteString(historyContext(history, topic.Name))
	fmt.Fprintf(&b, "\nStudent's latest answer: %s\n", answer)
	fmt.Fprintf(&b, "\nTone: %s.\n", tone)
	b.WriteString("Write one follow-up question that digs deeper into this answer without repeating the original question.")
	return b.String()
}

// historyContext keeps only the exchanges that belong to the current topic
func historyContext(history []model.ConversationEntry, topicName string) string {
	var parts []string
	n := 0
	for _, e := range history {
		if e.Topic != topicName {
			continue
		}
		switch e.QuestionType {
		case model.QuestionCore:
			parts = append(parts, fmt.Sprintf("[Core question] %s\n[Answer] %s", e.Question, e.Answer))
		case model.QuestionFollowup:
			n++
			parts = append(parts, fmt.Sprintf("[Follow-up %d] %s\n[Answer] %s", n, e.Question, e.Answer))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "\nConversation so far:\n" + strings.Join(parts, "\n\n") + "\n"
}

var followupPrefixes = []string{"**Follow-up**:", "Follow-up question:", "Follow-up:", "Question:", "Q:"}

// CleanFollowup strips labels and wrapping quotes the model tends to add
func CleanFollowup(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range followupPrefixes {
		if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			text = strings.TrimSpace(text[len(prefix):])
		}
	}
	for i := 0; i < 2; i++ {
		if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
			text = strings.TrimSpace(text[1 : len(text)-1])
		}
	}
	return text
}

// ValidFollowup rejects responses that are too short or merely echo the
// core question or a preset.
func ValidFollowup(text string, topic *model.Topic) bool {
	if utf8.RuneCountInString(text) < 5 {
		return false
	}
	if strings.Contains(topic.CoreQuestion(), text) {
		return false
	}
	for _, preset := range topic.Followups {
		if preset == text {
			return false
		}
	}
	return true
}
