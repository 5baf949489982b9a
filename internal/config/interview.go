package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// InterviewConfig tunes question selection, depth scoring and follow-ups
type InterviewConfig struct {
	TotalQuestions          int      `yaml:"total_questions" json:"totalQuestions"`
	MinAnswerLength         int      `yaml:"min_answer_length" json:"minAnswerLength"`
	MaxFollowupsPerQuestion int      `yaml:"max_followups_per_question" json:"maxFollowupsPerQuestion"`
	MaxDepthScore           int      `yaml:"max_depth_score" json:"maxDepthScore"`
	UndoCapacity            int      `yaml:"undo_capacity" json:"undoCapacity"`
	DepthKeywords           []string `yaml:"depth_keywords" json:"depthKeywords"`
	CommonKeywords          []string `yaml:"common_keywords" json:"commonKeywords"`
	DefaultFollowup         string   `yaml:"default_followup" json:"defaultFollowup"`
	DefaultUserName         string   `yaml:"default_user_name" json:"defaultUserName"`
}

var defaultDepthKeywords = []string{
	"example", "experience", "specific", "at that time", "that time", "once",
	"remember", "feel", "felt", "think", "believe", "reflect", "realized",
	"impact", "learned", "gained", "grow", "changed", "improve", "progress",
	"because", "so that", "afterwards", "result", "process", "detail",
	"happy", "sad", "nervous", "excited", "moved", "impressed",
	"help", "support", "cooperate", "communicate", "together",
}

var defaultCommonKeywords = []string{
	"time", "method", "plan", "goal", "team", "interaction", "conflict",
	"lesson", "study", "emotion", "family", "friend", "teacher", "classmate",
	"neighbor",
}

// DefaultInterviewConfig returns the built-in tuning
func DefaultInterviewConfig() *InterviewConfig {
	return &InterviewConfig{
		TotalQuestions:          6,
		MinAnswerLength:         15,
		MaxFollowupsPerQuestion: 3,
		MaxDepthScore:           4,
		UndoCapacity:            10,
		DepthKeywords:           append([]string(nil), defaultDepthKeywords...),
		CommonKeywords:          append([]string(nil), defaultCommonKeywords...),
		DefaultFollowup:         "Can you be more specific?",
		DefaultUserName:         "anonymous",
	}
}

// LoadInterviewFile overlays the YAML file at path on top of the defaults.
// Keys missing from the file keep their default value.
func LoadInterviewFile(path string) (*InterviewConfig, error) {
	cfg := DefaultInterviewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading interview config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing interview config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects tuning that would break the interview invariants
func (c *InterviewConfig) Validate() error {
	var errs []error
	if c.TotalQuestions < 1 {
		errs = append(errs, errors.New("total_questions must be at least 1"))
	}
	if c.MinAnswerLength < 0 {
		errs = append(errs, errors.New("min_answer_length must not be negative"))
	}
	if c.MaxFollowupsPerQuestion < 0 {
		errs = append(errs, errors.New("max_followups_per_question must not be negative"))
	}
	if c.MaxDepthScore < 1 {
		errs = append(errs, errors.New("max_depth_score must be at least 1"))
	}
	if c.UndoCapacity < 1 {
		errs = append(errs, errors.New("undo_capacity must be at least 1"))
	}
	if err := normalizeKeywords("depth_keywords", c.DepthKeywords); err != nil {
		errs = append(errs, err)
	}
	if err := normalizeKeywords("common_keywords", c.CommonKeywords); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.DefaultFollowup) == "" {
		errs = append(errs, errors.New("default_followup must not be empty"))
	}
	return errors.Join(errs...)
}

// normalizeKeywords trims the list in place and rejects empty entries
func normalizeKeywords(field string, kws []string) error {
	if len(kws) == 0 {
		return fmt.Errorf("%s must not be empty", field)
	}
	for i, kw := range kws {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return fmt.Errorf("%s[%d] is blank", field, i)
		}
		kws[i] = kw
	}
	return nil
}
