package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/config"
	"github.com/dailywell/content-engine/pkg/logger"
)

// GeneratedContent is a generator's raw output before scoring.
type GeneratedContent struct {
	Title      string
	Summary    string
	Topic      string
	Confidence float64
}

// Generator produces candidate content for a date. Implementations wrap
// the upstream model endpoint; the engine treats it as a black box.
type Generator interface {
	Generate(ctx context.Context, date string, topic string) (*GeneratedContent, error)
}

// fallbackTopics cycle by day of month so consecutive fallback days do
// not repeat a topic.
var fallbackTopics = []GeneratedContent{
	{
		Title:      "Take a Short Walk After Meals",
		Summary:    "A gentle ten minute walk after eating may support digestion and help steady your energy through the day. Consider starting with just one meal and see how it feels.",
		Topic:      "movement",
		Confidence: 0.4,
	},
	{
		Title:      "Wind Down Before Bed",
		Summary:    "Dimming lights and putting screens away an hour before sleep may help your body ease into rest. Learn what evening routine works for you and keep it simple.",
		Topic:      "sleep",
		Confidence: 0.4,
	},
	{
		Title:      "Start Your Day With a Glass of Water",
		Summary:    "Drinking water soon after waking may help you rehydrate after the night. Consider keeping a glass by your bed as a small reminder.",
		Topic:      "hydration",
		Confidence: 0.4,
	},
	{
		Title:      "Try a One Minute Breathing Pause",
		Summary:    "When the day feels busy, a single minute of slow breathing may help you reset. Consider pairing it with something you already do, like waiting for coffee.",
		Topic:      "stress",
		Confidence: 0.4,
	},
}

// StaticFallbackGenerator serves curated content when the upstream
// generator is exhausted. Confidence is fixed low so fallback content
// never auto-approves on confidence-gated rules.
type StaticFallbackGenerator struct{}

// Generate returns the curated entry for the date's day of month.
func (StaticFallbackGenerator) Generate(_ context.Context, date string, _ string) (*GeneratedContent, error) {
	idx := 0
	if t, err := time.Parse("2006-01-02", date); err == nil {
		idx = t.Day() % len(fallbackTopics)
	}
	content := fallbackTopics[idx]
	return &content, nil
}

// RetryingGenerator wraps an upstream generator with exponential backoff
// and a bounded attempt count.
type RetryingGenerator struct {
	upstream Generator
	cfg      config.GeneratorConfig
}

// NewRetryingGenerator creates a RetryingGenerator
func NewRetryingGenerator(upstream Generator, cfg config.GeneratorConfig) *RetryingGenerator {
	return &RetryingGenerator{upstream: upstream, cfg: cfg}
}

func (g *RetryingGenerator) Generate(ctx context.Context, date string, topic string) (*GeneratedContent, error) {
	log := logger.GetLogger()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.cfg.BackoffBase
	policy.MaxInterval = g.cfg.BackoffCap

	var content *GeneratedContent
	attempt := 0
	operation := func() error {
		attempt++
		c, err := g.upstream.Generate(ctx, date, topic)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("date", date).
				Msg("content generation attempt failed")
			return err
		}
		content = c
		return nil
	}

	wrapped := backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(g.cfg.MaxAttempts-1))
	if err := backoff.Retry(operation, wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}
	return content, nil
}
