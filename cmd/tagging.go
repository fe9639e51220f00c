package cmd

import (
	"context"
	"fmt"

	"github.com/smartserve-ai/smartserve/internal/ai/gemini"
	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/secrets"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// extractors holds the two tag strategies the service needs: one for
// persisted records, which falls back to keywords, and a raw one for the
// analyze operation.
type extractors struct {
	records tags.Extractor
	analyze tags.Extractor
}

// bindStrategy points ai.strategy at the --strategy flag of the command being
// run. Several commands define the flag and viper keeps a single binding per key.
func bindStrategy(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlag("ai.strategy", cmd.Flags().Lookup("strategy"))
}

func buildExtractors(ctx context.Context, config *AIConfig, log *zap.Logger) (extractors, error) {
	keyword := tags.DefaultKeyword()

	switch config.Strategy {
	case tags.StrategyKeyword:
		log.Info("using keyword tag extraction")
		memo := tags.Memoize(keyword)
		return extractors{records: memo, analyze: memo}, nil

	case tags.StrategyGemini:
		tagger, err := newGeminiTagger(ctx, config.Gemini, log)
		if err != nil {
			return extractors{}, err
		}
		return extractors{
			records: tags.Memoize(tags.NewGenerative(tagger, keyword, log)),
			analyze: tags.Memoize(tags.NewGenerative(tagger, nil, log)),
		}, nil
	}

	return extractors{}, fmt.Errorf("unknown tag strategy %q", config.Strategy)
}

func newGeminiTagger(ctx context.Context, config *GeminiConfig, log *zap.Logger) (*gemini.Tagger, error) {
	if config == nil {
		config = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini strategy selected: %w", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		APIKey:     apiKey,
		Model:      config.Model,
		BaseURL:    config.BaseURL,
		Timeout:    config.Timeout,
		MaxRetries: config.MaxRetries,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	tagLog := logger.WithCommonFields(log, "gemini", generator.Model())
	tagLog.Info("using gemini tag extraction")

	return gemini.NewTagger(generator, tagLog, config.MaxLogLength), nil
}
