package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/smartserve-ai/smartserve/internal/matching"
	"go.uber.org/zap"
)

const (
	SkillOverlapName = "skill_overlap"
	MinimumScoreName = "minimum_score"
	ExcludeIDsName   = "exclude_ids"
)

// toggle carries the enabled/disabled state shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type skillOverlapFilter[T any] struct {
	toggle
}

// NewSkillOverlap creates a filter that removes candidates sharing no skill tag.
func NewSkillOverlap[T any]() Filter[T] {
	return &skillOverlapFilter[T]{}
}

func (f *skillOverlapFilter[T]) Name() string { return SkillOverlapName }

func (f *skillOverlapFilter[T]) Validate(*Config) error { return nil }

func (f *skillOverlapFilter[T]) Apply(_ context.Context, deps Deps, c Candidates[T]) (Candidates[T], Step, error) {
	initial := len(c)
	kept, dropped := keep(c, func(r matching.Ranked[T]) bool {
		return len(r.Result.MatchedSkills) > 0
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding candidates without skill overlap",
			zap.Strings("excluded", dropped),
			zap.Int("left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *skillOverlapFilter[T]) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minimumScoreFilter[T any] struct {
	toggle
	minimum int
}

// NewMinimumScore creates a filter that removes candidates scoring below the
// configured minimum.
func NewMinimumScore[T any]() Filter[T] {
	return &minimumScoreFilter[T]{}
}

func (f *minimumScoreFilter[T]) Name() string { return MinimumScoreName }

func (f *minimumScoreFilter[T]) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > 100 {
		return fmt.Errorf("minimum score must be between 0 and 100, got %d", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter[T]) Apply(_ context.Context, deps Deps, c Candidates[T]) (Candidates[T], Step, error) {
	initial := len(c)
	if f.minimum == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := keep(c, func(r matching.Ranked[T]) bool {
		return r.Result.Value >= f.minimum
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding candidates below minimum score",
			zap.Int("minimum_score", f.minimum),
			zap.Strings("excluded", dropped),
			zap.Int("left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *minimumScoreFilter[T]) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.minimum)},
	}
}

type excludeIDsFilter[T any] struct {
	toggle
	ids map[string]struct{}
}

// NewExcludeIDs creates a filter that removes candidates by ID.
func NewExcludeIDs[T any]() Filter[T] {
	return &excludeIDsFilter[T]{}
}

func (f *excludeIDsFilter[T]) Name() string { return ExcludeIDsName }

func (f *excludeIDsFilter[T]) Validate(cfg *Config) error {
	f.ids = make(map[string]struct{})
	if cfg == nil {
		return nil
	}
	for _, id := range cfg.ExcludeIDs {
		if id = strings.TrimSpace(id); id != "" {
			f.ids[id] = struct{}{}
		}
	}
	return nil
}

func (f *excludeIDsFilter[T]) Apply(_ context.Context, deps Deps, c Candidates[T]) (Candidates[T], Step, error) {
	initial := len(c)
	if len(f.ids) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := keep(c, func(r matching.Ranked[T]) bool {
		_, excluded := f.ids[r.ID]
		return !excluded
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding candidates by id",
			zap.Strings("excluded", dropped),
			zap.Int("left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *excludeIDsFilter[T]) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"excluded_ids": strconv.Itoa(len(f.ids))},
	}
}
