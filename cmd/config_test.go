package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/smartserve-ai/smartserve/internal/events"
	"github.com/smartserve-ai/smartserve/internal/secrets"
	"github.com/smartserve-ai/smartserve/internal/sweeper"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, 5000, config.Port)
	assert.Equal(t, events.DefaultChannel, config.Events.Channel)
	assert.Equal(t, sweeper.DefaultSchedule, config.Sweeper.Schedule)
	assert.Equal(t, 30*time.Second, config.HTTP.RequestTimeout)
	assert.Equal(t, 10*time.Second, config.HTTP.ShutdownTimeout)
	assert.Equal(t, 0, config.Matching.MinimumScore)
	assert.Equal(t, tags.StrategyKeyword, config.AI.Strategy)
	assert.Equal(t, "gemini-2.5-flash", config.AI.Gemini.Model)
	assert.Equal(t, 2, config.AI.Gemini.MaxRetries)
	assert.Empty(t, config.DatabaseURL)
	assert.Empty(t, config.RedisURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	config, err := loadConfig(newTestViper(map[string]any{
		"port":                   8080,
		"ai.strategy":            " GEMINI ",
		"matching.minimum-score": 60,
		"sweeper.schedule":       "",
		"http.request-timeout":   "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, tags.StrategyGemini, config.AI.Strategy)
	assert.Equal(t, 60, config.Matching.MinimumScore)
	assert.Empty(t, config.Sweeper.Schedule)
	assert.Equal(t, 5*time.Second, config.HTTP.RequestTimeout)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "unknown strategy", values: map[string]any{"ai.strategy": "openai"}},
		{name: "minimum score above 100", values: map[string]any{"matching.minimum-score": 101}},
		{name: "negative minimum score", values: map[string]any{"matching.minimum-score": -1}},
		{name: "port out of range", values: map[string]any{"port": 70000}},
		{name: "too many retries", values: map[string]any{"ai.gemini.max-retries": 11}},
		{name: "negative timeout", values: map[string]any{"http.shutdown-timeout": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(newTestViper(tt.values))
			require.Error(t, err)
		})
	}
}

func TestRedactedHidesSecrets(t *testing.T) {
	config := &Config{
		DatabaseURL: "postgres://user:pass@db/smartserve",
		RedisURL:    "redis://:pass@cache:6379/0",
		AI: &AIConfig{
			Strategy: tags.StrategyGemini,
			Gemini:   &GeminiConfig{APIKey: "secret-key", Model: "gemini-2.5-flash"},
		},
	}

	out := redacted(config)

	assert.Equal(t, "***", out.DatabaseURL)
	assert.Equal(t, "***", out.RedisURL)
	assert.Equal(t, "***", out.AI.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-flash", out.AI.Gemini.Model)

	// the original stays usable
	assert.Equal(t, "secret-key", config.AI.Gemini.APIKey)
	assert.Equal(t, "postgres://user:pass@db/smartserve", config.DatabaseURL)
}

func TestBuildExtractorsKeyword(t *testing.T) {
	got, err := buildExtractors(context.Background(), &AIConfig{Strategy: tags.StrategyKeyword}, zap.NewNop())
	require.NoError(t, err)

	set := got.records.Extract(context.Background(), "I teach math to kids", tags.KindSkills)
	assert.True(t, set.Contains("Teaching"))
	assert.Equal(t, tags.StrategyKeyword, got.analyze.Name())
}

func TestBuildExtractorsGeminiWithoutKey(t *testing.T) {
	_, err := buildExtractors(context.Background(), &AIConfig{
		Strategy: tags.StrategyGemini,
		Gemini:   &GeminiConfig{},
	}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, secrets.ErrNotConfigured)
}

func TestBuildExtractorsUnknownStrategy(t *testing.T) {
	_, err := buildExtractors(context.Background(), &AIConfig{Strategy: "openai"}, zap.NewNop())
	require.Error(t, err)
}

func TestStrategyFlagFollowsRunningCommand(t *testing.T) {
	reset := func() {
		for _, c := range []*cobra.Command{analyzeCmd, serveCmd} {
			f := c.Flags().Lookup("strategy")
			_ = f.Value.Set("")
			f.Changed = false
		}
	}
	reset()
	t.Cleanup(reset)

	require.NoError(t, analyzeCmd.Flags().Set("strategy", tags.StrategyGemini))
	require.NoError(t, serveCmd.Flags().Set("strategy", tags.StrategyKeyword))

	require.NoError(t, bindStrategy(analyzeCmd, nil))
	assert.Equal(t, tags.StrategyGemini, viper.GetString("ai.strategy"))

	require.NoError(t, bindStrategy(serveCmd, nil))
	assert.Equal(t, tags.StrategyKeyword, viper.GetString("ai.strategy"))
}

func TestReadInputFromArgs(t *testing.T) {
	text, kind, err := readInput([]string{"need a driver"}, "needs")
	require.NoError(t, err)
	assert.Equal(t, "need a driver", text)
	assert.Equal(t, tags.KindNeeds, kind)

	_, kind, err = readInput([]string{"I cook"}, "")
	require.NoError(t, err)
	assert.Equal(t, tags.KindSkills, kind)
}
