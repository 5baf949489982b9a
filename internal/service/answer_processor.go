package service

import (
	"strings"
	"time"

	"campusinterview/internal/config"
	"campusinterview/internal/model"
)

// Sentinels written to the log in place of a missing answer
const (
	NoAnswerSentinel         = "no answer given"
	NoFollowupAnswerSentinel = "no follow-up answer given"
	SkippedSentinel          = "skipped"
	FollowupSkippedSentinel  = "follow-up skipped"
)

// AnswerProcessor turns raw answer text into log-ready entries
type AnswerProcessor struct {
	depthKeywords  []string
	commonKeywords []string
	maxDepthScore  int
	now            func() time.Time
}

func NewAnswerProcessor(cfg *config.InterviewConfig) *AnswerProcessor {
	return &AnswerProcessor{
		depthKeywords:  lowerAll(cfg.DepthKeywords),
		commonKeywords: lowerAll(cfg.CommonKeywords),
		maxDepthScore:  cfg.MaxDepthScore,
		now:            time.Now,
	}
}

// ScoreDepth counts the depth keywords present in the answer, capped at the
// configured maximum.
func (p *AnswerProcessor) ScoreDepth(answer string) int {
	text := strings.ToLower(strings.TrimSpace(answer))
	if text == "" {
		return 0
	}
	score := 0
	for _, kw := range p.depthKeywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return min(score, p.maxDepthScore)
}

// ExtractKeywords returns the common keywords mentioned in the answer
func (p *AnswerProcessor) ExtractKeywords(answer string) []string {
	text := strings.ToLower(answer)
	var out []string
	for _, kw := range p.commonKeywords {
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// ProcessCoreAnswer packages a core answer. questionText is the prompt as
// shown to the user; the topic's core question is used when it is empty.
func (p *AnswerProcessor) ProcessCoreAnswer(answer string, topic *model.Topic, questionText string) model.ConversationEntry {
	if questionText == "" {
		questionText = topic.CoreQuestion()
	}
	text := strings.TrimSpace(answer)
	depth := p.ScoreDepth(text)
	if text == "" {
		text = NoAnswerSentinel
	}
	return model.ConversationEntry{
		Timestamp:    p.now().UTC(),
		Topic:        topic.Name,
		QuestionType: model.QuestionCore,
		Question:     questionText,
		Answer:       text,
		DepthScore:   depth,
	}
}

func (p *AnswerProcessor) ProcessFollowupAnswer(answer string, topic *model.Topic, followupQuestion string, isAI bool) model.ConversationEntry {
	text := strings.TrimSpace(answer)
	depth := p.ScoreDepth(text)
	if text == "" {
		text = NoFollowupAnswerSentinel
	}
	return model.ConversationEntry{
		Timestamp:     p.now().UTC(),
		Topic:         topic.Name,
		QuestionType:  model.QuestionFollowup,
		Question:      followupQuestion,
		Answer:        text,
		DepthScore:    depth,
		IsAIGenerated: isAI,
	}
}

// SkipEntry builds the sentinel entry logged when the pending question is skipped
func (p *AnswerProcessor) SkipEntry(session *model.Session, topic *model.Topic, questionText string) model.ConversationEntry {
	entry := model.ConversationEntry{
		Timestamp:    p.now().UTC(),
		Topic:        topic.Name,
		QuestionType: model.QuestionCore,
		Question:     questionText,
		Answer:       SkippedSentinel,
	}
	if session.IsFollowup {
		entry.QuestionType = model.QuestionFollowupSkipped
		entry.Question = session.CurrentFollowupQuestion
		entry.Answer = FollowupSkippedSentinel
		entry.IsAIGenerated = session.CurrentFollowupIsAI
	}
	return entry
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
