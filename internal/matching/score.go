package matching

import (
	"sort"
	"strings"

	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/tags"
)

const (
	pointsPerSkill    = 30
	maxSkillPoints    = 60
	availabilityBonus = 20
	locationBonus     = 20
	maxScore          = 100
)

// Result is the outcome of scoring one volunteer against one need.
type Result struct {
	Value         int      `json:"match_score"`
	Explanation   string   `json:"explanation"`
	MatchedSkills []string `json:"matched_skills"`
}

// Score rates how well v fits n on a 0..100 scale.
//
// Skills: each volunteer tag overlapping any need tag (see tags.Overlaps) is
// worth 30 points, capped at 60. Availability: 20 points when the volunteer's
// availability and the need's duration are both set; their contents are not
// compared. Location: 20 points for equal, non-empty locations ignoring case.
func Score(v model.Volunteer, n model.Need) Result {
	matched := MatchedSkills(v.Skills, n.Needs)

	score := 0
	reasons := make([]string, 0, 3)

	if len(matched) > 0 {
		score += min(len(matched)*pointsPerSkill, maxSkillPoints)
		reasons = append(reasons, "Skill match: "+strings.Join(matched, ", "))
	}

	if strings.TrimSpace(v.Availability) != "" && strings.TrimSpace(n.Duration) != "" {
		score += availabilityBonus
		reasons = append(reasons, "Availability aligns with project duration")
	}

	if sameLocation(v.Location, n.Location) {
		score += locationBonus
		reasons = append(reasons, "Same location")
	}

	explanation := ""
	if len(reasons) > 0 {
		explanation = strings.Join(reasons, ". ") + "."
	}

	return Result{
		Value:         min(score, maxScore),
		Explanation:   explanation,
		MatchedSkills: matched,
	}
}

// MatchedSkills returns the volunteer tags that overlap at least one need tag,
// in volunteer order and without duplicates.
func MatchedSkills(skills, needs []string) []string {
	matched := make([]string, 0, len(skills))
	for _, skill := range tags.NewSet(skills...) {
		for _, need := range needs {
			if tags.Overlaps(skill, need) {
				matched = append(matched, skill)
				break
			}
		}
	}
	return matched
}

func sameLocation(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// Ranked pairs a scored item with its ID for ordering.
type Ranked[T any] struct {
	ID     string
	Item   T
	Result Result
}

// Rank orders items by score descending, then by ID ascending.
func Rank[T any](items []Ranked[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Result.Value != items[j].Result.Value {
			return items[i].Result.Value > items[j].Result.Value
		}
		return items[i].ID < items[j].ID
	})
}
