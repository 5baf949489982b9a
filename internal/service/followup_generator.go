package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
)

// FollowupProvider produces a context-aware follow-up question. An error or
// an empty string both mean "no follow-up available". Implementations own
// their retry and timeout policy.
type FollowupProvider interface {
	GenerateFollowup(ctx context.Context, answer string, topic *model.Topic, history []model.ConversationEntry) (string, error)
}

// FollowupGenerator decides whether an answer warrants a follow-up
type FollowupGenerator struct {
	provider        FollowupProvider
	minAnswerLength int
	maxFollowups    int
	maxDepthScore   int
	defaultFollowup string
	log             *logger.Logger
}

// NewFollowupGenerator creates a generator. provider may be nil, in which
// case only preset follow-ups are used.
func NewFollowupGenerator(cfg *config.InterviewConfig, provider FollowupProvider, log *logger.Logger) *FollowupGenerator {
	return &FollowupGenerator{
		provider:        provider,
		minAnswerLength: cfg.MinAnswerLength,
		maxFollowups:    cfg.MaxFollowupsPerQuestion,
		maxDepthScore:   cfg.MaxDepthScore,
		defaultFollowup: cfg.DefaultFollowup,
		log:             log,
	}
}

// ShouldFollowup applies the follow-up policy: the per-question ceiling,
// then the depth short-circuit, then the provider, then the preset fallback
// for short or empty answers.
func (g *FollowupGenerator) ShouldFollowup(
	ctx context.Context,
	answer string,
	topic *model.Topic,
	history []model.ConversationEntry,
	followupCount int,
	depthScore int,
	seed uint64,
) model.FollowupDecision {
	text := strings.TrimSpace(answer)

	if followupCount >= g.maxFollowups {
		return model.FollowupDecision{}
	}

	forced := text == "" || utf8.RuneCountInString(text) < g.minAnswerLength

	if depthScore >= g.maxDepthScore {
		return model.FollowupDecision{}
	}

	if g.provider != nil {
		q, err := g.provider.GenerateFollowup(ctx, text, topic, history)
		if err != nil {
			g.log.Warn("follow-up provider failed", "topic", topic.Name, "error", err)
		} else if q = strings.TrimSpace(q); q != "" {
			return model.FollowupDecision{NeedFollowup: true, FollowupQuestion: q, IsAIGenerated: true}
		}
	}

	if forced {
		return model.FollowupDecision{NeedFollowup: true, FollowupQuestion: g.presetFollowup(topic, seed)}
	}
	return model.FollowupDecision{}
}

func (g *FollowupGenerator) presetFollowup(topic *model.Topic, seed uint64) string {
	presets := topic.Followups
	if len(presets) == 0 {
		return g.defaultFollowup
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	return presets[rng.IntN(len(presets))]
}
