package tags

import (
	"context"
	"strings"

	"github.com/smartserve-ai/smartserve/internal/ai"
	"github.com/smartserve-ai/smartserve/internal/logger"
	"go.uber.org/zap"
)

// Generative asks a remote model for tags. Failures are logged and replaced by
// the fallback extractor's answer, or by an empty set when there is no fallback.
type Generative struct {
	tagger   ai.Tagger
	fallback Extractor
	logger   *zap.Logger
}

// NewGenerative wires a tagger with an optional fallback.
func NewGenerative(tagger ai.Tagger, fallback Extractor, log *zap.Logger) *Generative {
	return &Generative{
		tagger:   tagger,
		fallback: fallback,
		logger:   logger.WithFields(log, zap.String(logger.FieldStrategy, StrategyGemini)),
	}
}

func (g *Generative) Name() string { return StrategyGemini }

func (g *Generative) Extract(ctx context.Context, text string, kind Kind) (result Set) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("tagger panicked", zap.Any("panic", r))
			result = g.fallbackFor(ctx, text, kind)
		}
	}()

	if strings.TrimSpace(text) == "" || g.tagger == nil {
		return g.fallbackFor(ctx, text, kind)
	}

	raw, err := g.tagger.Tags(ctx, text, string(kind))
	if err != nil {
		g.logger.Warn("generative tagging failed, falling back",
			zap.String("kind", string(kind)),
			zap.Bool("has_fallback", g.fallback != nil),
			zap.Error(err),
		)
		return g.fallbackFor(ctx, text, kind)
	}

	set := NewSet(raw...)
	if len(set) == 0 {
		g.logger.Debug("generative tagging returned no tags", zap.String("kind", string(kind)))
		return g.fallbackFor(ctx, text, kind)
	}

	return set
}

func (g *Generative) fallbackFor(ctx context.Context, text string, kind Kind) Set {
	if g.fallback == nil {
		return Set{}
	}
	return g.fallback.Extract(ctx, text, kind)
}
