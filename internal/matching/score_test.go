package matching

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/tags"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		volunteer   model.Volunteer
		need        model.Need
		score       int
		explanation string
		matched     []string
	}{
		{
			name: "one skill with availability and location",
			volunteer: model.Volunteer{
				Skills:       []string{"Teaching", "Driving"},
				Location:     "Pune",
				Availability: "Weekends",
			},
			need: model.Need{
				Needs:    []string{"Math", "Teaching"},
				Location: "pune",
				Duration: "3 months",
			},
			score:       70,
			explanation: "Skill match: Teaching. Availability aligns with project duration. Same location.",
			matched:     []string{"Teaching"},
		},
		{
			name:        "nothing fires",
			volunteer:   model.Volunteer{Skills: []string{"Cooking"}, Location: "Delhi"},
			need:        model.Need{Needs: []string{"Driving"}, Location: "Mumbai", Duration: "1 week"},
			score:       0,
			explanation: "",
			matched:     []string{},
		},
		{
			name:        "skill points are capped at 60",
			volunteer:   model.Volunteer{Skills: []string{"Teaching", "Math", "Art"}},
			need:        model.Need{Needs: []string{"Teaching", "Math", "Art"}},
			score:       60,
			explanation: "Skill match: Teaching, Math, Art.",
			matched:     []string{"Teaching", "Math", "Art"},
		},
		{
			name: "total is capped at 100",
			volunteer: model.Volunteer{
				Skills:       []string{"Teaching", "Math"},
				Location:     "Pune",
				Availability: "Evenings",
			},
			need: model.Need{
				Needs:    []string{"Teaching", "Math"},
				Location: "Pune",
				Duration: "Flexible",
			},
			score:       100,
			explanation: "Skill match: Teaching, Math. Availability aligns with project duration. Same location.",
			matched:     []string{"Teaching", "Math"},
		},
		{
			name:        "containment in both directions",
			volunteer:   model.Volunteer{Skills: []string{"Mathematics", "Dance", "Dancing"}},
			need:        model.Need{Needs: []string{"math", "Dance Teacher"}},
			score:       60,
			explanation: "Skill match: Mathematics, Dance.",
			matched:     []string{"Mathematics", "Dance"},
		},
		{
			name:        "location must be equal, not contained",
			volunteer:   model.Volunteer{Location: "New Delhi"},
			need:        model.Need{Location: "Delhi"},
			score:       0,
			explanation: "",
			matched:     []string{},
		},
		{
			name:        "blank availability does not count",
			volunteer:   model.Volunteer{Availability: "  "},
			need:        model.Need{Duration: "2 weeks"},
			score:       0,
			explanation: "",
			matched:     []string{},
		},
		{
			name:        "blank locations are not the same location",
			volunteer:   model.Volunteer{Location: " "},
			need:        model.Need{Location: ""},
			score:       0,
			explanation: "",
			matched:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.volunteer, tt.need)
			if got.Value != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, got.Value)
			}
			if got.Explanation != tt.explanation {
				t.Fatalf("expected explanation %q, got %q", tt.explanation, got.Explanation)
			}
			if !reflect.DeepEqual(got.MatchedSkills, tt.matched) {
				t.Fatalf("expected matched %v, got %v", tt.matched, got.MatchedSkills)
			}
		})
	}
}

func TestScoreLocationBonusOnce(t *testing.T) {
	v := model.Volunteer{Location: "Pune"}
	n := model.Need{Location: "PUNE"}

	got := Score(v, n)
	if got.Value != locationBonus {
		t.Fatalf("expected only the location bonus, got %d", got.Value)
	}
	if strings.Count(got.Explanation, "Same location") != 1 {
		t.Fatalf("expected location to be mentioned once: %q", got.Explanation)
	}
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	keyword := tags.DefaultKeyword()
	texts := []string{
		"",
		"We need a math teacher for kids",
		"photographer with a car who can cook and sing",
		"qwerty",
		"web code react video edit drive food paint dance science",
	}
	locations := []string{"", "Pune", "pune", "Delhi"}

	for _, vt := range texts {
		for _, nt := range texts {
			for _, loc := range locations {
				v := model.Volunteer{
					Skills:       keyword.Extract(context.Background(), vt, tags.KindSkills),
					Location:     loc,
					Availability: vt,
				}
				n := model.Need{
					Needs:    keyword.Extract(context.Background(), nt, tags.KindNeeds),
					Location: "Pune",
					Duration: nt,
				}

				first := Score(v, n)
				if first.Value < 0 || first.Value > 100 {
					t.Fatalf("score out of range: %d", first.Value)
				}
				if again := Score(v, n); !reflect.DeepEqual(first, again) {
					t.Fatalf("score not deterministic: %+v vs %+v", first, again)
				}
			}
		}
	}
}

func TestScoreWithSentinelTags(t *testing.T) {
	keyword := tags.DefaultKeyword()
	v := model.Volunteer{Skills: keyword.Extract(context.Background(), "", tags.KindSkills)}
	n := model.Need{Needs: []string{"Teaching"}, Location: "Pune"}

	got := Score(v, n)
	if got.Value != 0 || got.Explanation != "" {
		t.Fatalf("expected empty result for sentinel skills, got %+v", got)
	}
}

func TestRank(t *testing.T) {
	items := []Ranked[string]{
		{ID: "c", Result: Result{Value: 40}},
		{ID: "b", Result: Result{Value: 70}},
		{ID: "a", Result: Result{Value: 40}},
		{ID: "d", Result: Result{Value: 100}},
	}

	Rank(items)

	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.ID)
	}
	if expect := []string{"d", "b", "a", "c"}; !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected order %v, got %v", expect, got)
	}
}
