package ai

import (
	"context"
)

// Kinds understood by taggers.
const (
	KindSkills = "skills"
	KindNeeds  = "needs"
)

// Tagger asks a language model for the skill labels described by text.
// kind is KindSkills for what a volunteer offers, KindNeeds for what an NGO
// requires. Errors are returned as-is; callers decide how to degrade.
type Tagger interface {
	Tags(ctx context.Context, text, kind string) ([]string, error)
}
