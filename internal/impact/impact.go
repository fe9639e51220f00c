package impact

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	weeksPerYear = 52
	// Share of people reached who are meaningfully helped.
	reachFactor = 0.25

	MinHours = 1
	MaxHours = 168

	GeneralSkill = "general"
)

// Range is an inclusive [Min, Max] benchmark.
type Range struct {
	Min float64
	Max float64
}

func (r Range) median() float64 { return (r.Min + r.Max) / 2 }

// Benchmark is what one hour of volunteering in a skill is worth.
type Benchmark struct {
	CostPerHour   Range
	PeoplePerHour Range
}

var benchmarks = map[string]Benchmark{
	"teaching":   {CostPerHour: Range{400, 700}, PeoplePerHour: Range{2, 6}},
	"coding":     {CostPerHour: Range{800, 1500}, PeoplePerHour: Range{20, 60}},
	"medical":    {CostPerHour: Range{1000, 2000}, PeoplePerHour: Range{0.5, 2}},
	"design":     {CostPerHour: Range{600, 1000}, PeoplePerHour: Range{10, 30}},
	"legal":      {CostPerHour: Range{1500, 3000}, PeoplePerHour: Range{0.2, 1}},
	"writing":    {CostPerHour: Range{500, 900}, PeoplePerHour: Range{30, 80}},
	"events":     {CostPerHour: Range{300, 600}, PeoplePerHour: Range{8, 25}},
	GeneralSkill: {CostPerHour: Range{250, 450}, PeoplePerHour: Range{1, 4}},
}

// Estimate is the projected yearly impact of weekly volunteering.
type Estimate struct {
	Skill        string `json:"skill"`
	WeeklyHours  int    `json:"weekly_hours"`
	YearlyHours  int    `json:"yearly_hours"`
	ValueCreated int64  `json:"value_created"`
	LivesTouched int64  `json:"lives_touched"`
}

// Skills lists the known benchmark skills in alphabetical order.
func Skills() []string {
	skills := make([]string, 0, len(benchmarks))
	for skill := range benchmarks {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// Calculate projects weekly hours in skill over a year. Unknown skills use
// the general benchmark.
func Calculate(skill string, weeklyHours int) (Estimate, error) {
	if weeklyHours < MinHours || weeklyHours > MaxHours {
		return Estimate{}, fmt.Errorf("weekly hours must be between %d and %d, got %d", MinHours, MaxHours, weeklyHours)
	}

	skill = strings.ToLower(strings.TrimSpace(skill))
	benchmark, ok := benchmarks[skill]
	if !ok {
		skill = GeneralSkill
		benchmark = benchmarks[GeneralSkill]
	}

	yearly := weeklyHours * weeksPerYear

	return Estimate{
		Skill:        skill,
		WeeklyHours:  weeklyHours,
		YearlyHours:  yearly,
		ValueCreated: int64(math.Round(float64(yearly) * benchmark.CostPerHour.median())),
		LivesTouched: int64(math.Round(float64(yearly) * benchmark.PeoplePerHour.median() * reachFactor)),
	}, nil
}
