package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smartserve-ai/smartserve/internal/ai"
	"github.com/smartserve-ai/smartserve/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxInputRunes       = 4000

	skillsTask = "extract 1-5 professional skills the person offers (e.g. \"Teaching\", \"Medical\", \"Driving\")."
	needsTask  = "extract 1-5 professional skills required (e.g. \"Teaching\", \"Medical\", \"Driving\")."
)

// Tagger implements ai.Tagger on top of a Gemini text generator.
type Tagger struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Tagger = (*Tagger)(nil)

func NewTagger(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Tagger {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tagger{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (t *Tagger) Tags(ctx context.Context, text, kind string) ([]string, error) {
	if t == nil || t.generator == nil {
		return nil, errors.New("gemini tagger is not initialized")
	}

	input := sanitizeInput(text)
	if input == "" {
		return nil, errors.New("text must not be empty")
	}

	prompt := buildPrompt(input, kind)

	t.logger.Debug("gemini generate content request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(input, t.maxLogLen)),
	)

	raw, err := t.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("gemini generate content response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, t.maxLogLen)),
	)

	return parseTags(raw)
}

func buildPrompt(text, kind string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Text: \"{{TEXT}}\"\n{{TASK}}\nReturn ONLY a raw JSON array of strings."
	}

	task := skillsTask
	if kind == ai.KindNeeds {
		task = needsTask
	}

	prompt := strings.ReplaceAll(template, "{{TASK}}", task)
	return strings.ReplaceAll(prompt, "{{TEXT}}", text)
}

// sanitizeInput flattens the text onto one line and keeps it from closing the
// quoted block it is embedded in.
func sanitizeInput(text string) string {
	text = strings.NewReplacer(`"`, "'", "`", "'").Replace(text)
	text = utils.CollapseSpaces(text)
	if utf8.RuneCountInString(text) > maxInputRunes {
		text = string([]rune(text)[:maxInputRunes])
	}
	return text
}

func parseTags(raw string) ([]string, error) {
	cleaned := extractJSON(raw)

	var items []any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapped map[string]any
		if objErr := json.Unmarshal([]byte(cleaned), &wrapped); objErr != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		list, ok := firstList(wrapped, "skills", "tags", "needs")
		if !ok {
			return nil, errors.New("parse gemini response: no array of tags")
		}
		items = list
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			tags = append(tags, s)
		}
	}

	return tags, nil
}

// extractJSON strips markdown code fences and any prose around the array.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	if !strings.HasPrefix(raw, "[") && !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}

	return raw
}

func firstList(m map[string]any, keys ...string) ([]any, bool) {
	for _, key := range keys {
		if list, ok := m[key].([]any); ok {
			return list, true
		}
	}
	return nil, false
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if name, ok := val["name"].(string); ok {
			return strings.TrimSpace(name)
		}
		return ""
	default:
		return ""
	}
}
