package tags

import (
	"strings"
)

const (
	// GeneralVolunteering is returned by the keyword strategy when nothing matches.
	GeneralVolunteering = "General Volunteering"
	// InvalidRequest is the single tag a generative model emits for unrealistic,
	// fictional or gibberish input.
	InvalidRequest = "Invalid Request"
)

// Kind tells the extractor whether text describes what a volunteer offers or
// what an NGO needs.
type Kind string

const (
	KindSkills Kind = "skills"
	KindNeeds  Kind = "needs"
)

// ParseKind maps loose user input onto a Kind. Anything unknown is KindSkills.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "needs", "need", "ngo", "requirement":
		return KindNeeds
	default:
		return KindSkills
	}
}

// Set is an ordered list of distinct, non-empty tags. Order only matters for display.
type Set []string

// NewSet trims labels, drops empty ones and collapses case-insensitive duplicates,
// keeping the first spelling seen.
func NewSet(labels ...string) Set {
	set := make(Set, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))

	for _, label := range labels {
		label = strings.Join(strings.Fields(label), " ")
		if label == "" {
			continue
		}

		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, label)
	}

	return set
}

// Contains reports whether tag is in the set, ignoring case.
func (s Set) Contains(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range s {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IsInvalid reports whether the set is the generative model's rejection marker.
func (s Set) IsInvalid() bool {
	return len(s) == 1 && strings.EqualFold(s[0], InvalidRequest)
}

// Strings returns a copy that is never nil, so it encodes as [] rather than null.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Overlaps is the tag comparison used for scoring: a and b match when either is
// a case-insensitive substring of the other. "Math" matches "Mathematics", and
// "Art" also matches "Martial Arts". "Dance" does not match "Dancing".
func Overlaps(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
