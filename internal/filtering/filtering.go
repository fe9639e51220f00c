package filtering

import (
	"context"
	"fmt"

	"github.com/smartserve-ai/smartserve/internal/matching"
	"go.uber.org/zap"
)

// Candidates is the list flowing through the pipeline: scored items with IDs.
type Candidates[T any] []matching.Ranked[T]

// Filter represents a single filtering step applied to scored candidates.
type Filter[T any] interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, c Candidates[T]) (Candidates[T], Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the per-request settings consumed by the filters.
type Config struct {
	// MinimumScore drops candidates scoring below it. Zero disables the step.
	MinimumScore int
	// ExcludeIDs drops candidates with these IDs.
	ExcludeIDs []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns fresh instances of every filter in pipeline order.
// Filters keep per-run state, so a slice must not be shared between runs.
func Default[T any]() []Filter[T] {
	return []Filter[T]{
		NewSkillOverlap[T](),
		NewMinimumScore[T](),
		NewExcludeIDs[T](),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName[T any](steps []Filter[T], name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates then applies the enabled filters in order.
func Run[T any](ctx context.Context, cfg *Config, deps Deps, steps []Filter[T], c Candidates[T]) (Candidates[T], error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		c = next
	}

	return c, nil
}

// Describe returns status entries for the provided filters.
func Describe[T any](steps []Filter[T]) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the candidates for which ok is true and the IDs of the rest.
func keep[T any](c Candidates[T], ok func(matching.Ranked[T]) bool) (Candidates[T], []string) {
	kept := make(Candidates[T], 0, len(c))
	var dropped []string
	for _, candidate := range c {
		if ok(candidate) {
			kept = append(kept, candidate)
			continue
		}
		dropped = append(dropped, candidate.ID)
	}
	return kept, dropped
}
