package tags

import "context"

// Strategy names accepted in configuration.
const (
	StrategyKeyword = "keyword"
	StrategyGemini  = "gemini"
)

// Extractor turns free text into a tag Set. Implementations fail soft: they
// never return an error and never panic on odd input.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, text string, kind Kind) Set
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, text string, kind Kind) Set

func (f ExtractorFunc) Name() string { return "func" }

func (f ExtractorFunc) Extract(ctx context.Context, text string, kind Kind) Set {
	return f(ctx, text, kind)
}
