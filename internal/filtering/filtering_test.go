package filtering

import (
	"context"
	"reflect"
	"testing"

	"github.com/smartserve-ai/smartserve/internal/matching"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func candidate(id string, score int, matched ...string) matching.Ranked[string] {
	return matching.Ranked[string]{
		ID:     id,
		Item:   id,
		Result: matching.Result{Value: score, MatchedSkills: matched},
	}
}

func ids(c Candidates[string]) []string {
	out := make([]string, 0, len(c))
	for _, item := range c {
		out = append(out, item.ID)
	}
	return out
}

func TestRunDefaultPipeline(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	input := Candidates[string]{
		candidate("a", 70, "Teaching"),
		candidate("b", 40),
		candidate("c", 30, "Driving"),
		candidate("d", 90, "Math", "Teaching"),
	}

	cfg := &Config{MinimumScore: 50, ExcludeIDs: []string{"d", " "}}
	got, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default[string](), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expect := []string{"a"}; !reflect.DeepEqual(ids(got), expect) {
		t.Fatalf("expected %v, got %v", expect, ids(got))
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 3 {
		t.Fatalf("expected 3 step logs, got %d", len(steps))
	}

	expected := []struct {
		name                   string
		initial, dropped, left int64
	}{
		{SkillOverlapName, 4, 1, 3},
		{MinimumScoreName, 3, 1, 2},
		{ExcludeIDsName, 2, 1, 1},
	}
	for i, want := range expected {
		fields := steps[i].ContextMap()
		if fields["name"] != want.name {
			t.Fatalf("step %d: expected %s, got %v", i, want.name, fields["name"])
		}
		if fields["initial"] != want.initial || fields["dropped"] != want.dropped || fields["left"] != want.left {
			t.Fatalf("step %s: unexpected counters %v", want.name, fields)
		}
	}
}

func TestRunWithoutConfigOnlyDropsZeroOverlap(t *testing.T) {
	input := Candidates[string]{
		candidate("a", 20),
		candidate("b", 30, "Teaching"),
	}

	got, err := Run(context.Background(), nil, Deps{}, Default[string](), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expect := []string{"b"}; !reflect.DeepEqual(ids(got), expect) {
		t.Fatalf("expected %v, got %v", expect, ids(got))
	}
}

func TestDisabledFilterIsSkipped(t *testing.T) {
	steps := Default[string]()
	DisableByName(steps, SkillOverlapName, "listing every candidate")

	input := Candidates[string]{candidate("a", 20), candidate("b", 0)}
	got, err := Run(context.Background(), &Config{}, Deps{}, steps, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both candidates to survive, got %v", ids(got))
	}

	statuses := Describe(steps)
	if statuses[0].Enabled || statuses[0].Reason != "listing every candidate" {
		t.Fatalf("unexpected status for disabled filter: %+v", statuses[0])
	}
	if !statuses[1].Enabled {
		t.Fatalf("expected %s to stay enabled", statuses[1].Name)
	}
}

func TestMinimumScoreValidation(t *testing.T) {
	_, err := Run(context.Background(), &Config{MinimumScore: 101}, Deps{}, Default[string](), nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPipelineKeepsOrder(t *testing.T) {
	input := Candidates[string]{
		candidate("z", 30, "Art"),
		candidate("y", 30, "Art"),
		candidate("x", 30, "Art"),
	}
	got, err := Run(context.Background(), &Config{}, Deps{}, Default[string](), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expect := []string{"z", "y", "x"}; !reflect.DeepEqual(ids(got), expect) {
		t.Fatalf("filters must not reorder candidates, got %v", ids(got))
	}
}
