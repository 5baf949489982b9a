package service

import (
	"strings"
	"testing"

	"campusinterview/internal/config"
	"campusinterview/internal/model"
)

func testProcessor() *AnswerProcessor {
	cfg := config.DefaultInterviewConfig()
	cfg.DepthKeywords = []string{"Example", "feel", "because", "learned", "together"}
	cfg.CommonKeywords = []string{"family", "team"}
	return NewAnswerProcessor(cfg)
}

func TestScoreDepth(t *testing.T) {
	p := testProcessor()
	tests := []struct {
		answer string
		want   int
	}{
		{"", 0},
		{"   ", 0},
		{"nothing here", 0},
		{"for EXAMPLE", 1},
		{"example example example", 1},
		{"I feel this because of what I learned", 3},
		{"example feel because learned together", 4},
	}
	for _, tt := range tests {
		if got := p.ScoreDepth(tt.answer); got != tt.want {
			t.Errorf("ScoreDepth(%q) = %d, want %d", tt.answer, got, tt.want)
		}
	}
}

func TestScoreDepthMonotonicAndBounded(t *testing.T) {
	p := testProcessor()
	text := "base answer"
	prev := p.ScoreDepth(text)
	for _, kw := range []string{"example", "feel", "example", "because", "learned", "together", "feel"} {
		text += " " + kw
		got := p.ScoreDepth(text)
		if got < prev {
			t.Fatalf("score dropped from %d to %d after adding %q", prev, got, kw)
		}
		if got < 0 || got > 4 {
			t.Fatalf("score %d out of range", got)
		}
		prev = got
	}
}

func TestProcessCoreAnswer(t *testing.T) {
	p := testProcessor()
	topic := &model.Topic{Name: "home-labor", Questions: []string{"What chores?"}}

	e := p.ProcessCoreAnswer("  I help because we do it together  ", topic, "")
	if e.Answer != "I help because we do it together" {
		t.Errorf("Answer = %q", e.Answer)
	}
	if e.Question != "What chores?" || e.QuestionType != model.QuestionCore || e.Topic != "home-labor" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.DepthScore != 2 {
		t.Errorf("DepthScore = %d, want 2", e.DepthScore)
	}

	empty := p.ProcessCoreAnswer(" \n", topic, "[Question 1/6] home-labor:\nWhat chores?")
	if empty.Answer != NoAnswerSentinel || empty.DepthScore != 0 {
		t.Errorf("empty answer entry = %+v", empty)
	}
	if !strings.HasPrefix(empty.Question, "[Question 1/6]") {
		t.Errorf("Question = %q", empty.Question)
	}
}

func TestProcessFollowupAnswer(t *testing.T) {
	p := testProcessor()
	topic := &model.Topic{Name: "home-labor", Questions: []string{"What chores?"}}

	e := p.ProcessFollowupAnswer("", topic, "Which one was hardest?", true)
	if e.QuestionType != model.QuestionFollowup || e.Question != "Which one was hardest?" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Answer != NoFollowupAnswerSentinel || !e.IsAIGenerated {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestSkipEntry(t *testing.T) {
	p := testProcessor()
	topic := &model.Topic{Name: "home-labor", Questions: []string{"What chores?"}}

	core := p.SkipEntry(&model.Session{}, topic, "prompt")
	if core.QuestionType != model.QuestionCore || core.Answer != SkippedSentinel || core.Question != "prompt" {
		t.Errorf("core skip = %+v", core)
	}

	s := &model.Session{IsFollowup: true, CurrentFollowupQuestion: "Why?", CurrentFollowupIsAI: true}
	fu := p.SkipEntry(s, topic, "Why?")
	if fu.QuestionType != model.QuestionFollowupSkipped || fu.Answer != FollowupSkippedSentinel {
		t.Errorf("follow-up skip = %+v", fu)
	}
	if fu.Question != "Why?" || !fu.IsAIGenerated {
		t.Errorf("follow-up skip = %+v", fu)
	}
}

func TestExtractKeywords(t *testing.T) {
	p := testProcessor()
	got := p.ExtractKeywords("My Family and my football team")
	if len(got) != 2 || got[0] != "family" || got[1] != "team" {
		t.Errorf("ExtractKeywords = %v", got)
	}
	if got := p.ExtractKeywords(""); len(got) != 0 {
		t.Errorf("ExtractKeywords(\"\") = %v", got)
	}
}
