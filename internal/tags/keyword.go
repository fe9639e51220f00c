package tags

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultRules []byte

// Rule maps a set of lowercase substrings to one tag.
type Rule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

// Keyword is the deterministic, in-process strategy. It never calls out.
type Keyword struct {
	rules []Rule
}

// ParseRules decodes a YAML keyword table.
func ParseRules(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	return rules, nil
}

// NewKeyword validates the rules and normalizes keywords to lowercase.
func NewKeyword(rules []Rule) (*Keyword, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("keyword table is empty")
	}

	normalized := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		tag := strings.TrimSpace(rule.Tag)
		if tag == "" {
			return nil, fmt.Errorf("keyword rule %d has no tag", i)
		}

		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("keyword rule %q has no keywords", tag)
		}

		normalized = append(normalized, Rule{Tag: tag, Keywords: keywords})
	}

	return &Keyword{rules: normalized}, nil
}

// DefaultKeyword returns the strategy backed by the embedded keyword table.
func DefaultKeyword() *Keyword {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		panic(err)
	}
	k, err := NewKeyword(rules)
	if err != nil {
		panic(err)
	}
	return k
}

func (k *Keyword) Name() string { return StrategyKeyword }

// Extract unions the tags of every rule with a keyword occurring in text.
// Kind is ignored. No match, including empty text, yields {GeneralVolunteering}.
func (k *Keyword) Extract(_ context.Context, text string, _ Kind) Set {
	lower := strings.ToLower(text)

	found := make([]string, 0, 4)
	if strings.TrimSpace(lower) != "" {
		for _, rule := range k.rules {
			for _, kw := range rule.Keywords {
				if strings.Contains(lower, kw) {
					found = append(found, rule.Tag)
					break
				}
			}
		}
	}

	if len(found) == 0 {
		return Set{GeneralVolunteering}
	}
	return NewSet(found...)
}
