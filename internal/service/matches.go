package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartserve-ai/smartserve/internal/filtering"
	"github.com/smartserve-ai/smartserve/internal/impact"
	"github.com/smartserve-ai/smartserve/internal/matching"
	"github.com/smartserve-ai/smartserve/internal/metadata"
	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/store"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"go.uber.org/zap"
)

// MatchQuery is an NGO's search for volunteers.
type MatchQuery struct {
	RawRequirement string `json:"raw_requirement" validate:"required"`
	Location       string `json:"location"`
	Duration       string `json:"duration"`
}

// VolunteerMatch is a volunteer profile with its score against a query.
type VolunteerMatch struct {
	model.Volunteer
	matching.Result
}

type MatchResult struct {
	Skills  tags.Set         `json:"skills"`
	Matches []VolunteerMatch `json:"matches"`
}

// NeedMatch is a post with its score against a volunteer.
type NeedMatch struct {
	model.Need
	matching.Result
	Applied bool `json:"applied"`
}

type OpportunityQuery struct {
	// ExcludeApplied hides posts the volunteer already applied to.
	ExcludeApplied bool
}

type OpportunityResult struct {
	Skills  tags.Set    `json:"skills"`
	Matches []NeedMatch `json:"matches"`
}

// Analyze tags free text without persisting anything. It never fails.
func (s *Service) Analyze(ctx context.Context, text string, kind tags.Kind) tags.Set {
	set := s.analyzer.Extract(ctx, text, kind)
	if set == nil {
		return tags.Set{}
	}
	return set
}

// FindMatches ranks volunteers whose location contains q.Location against
// the tags detected in q.RawRequirement. Volunteers without a skill in common
// are left out.
func (s *Service) FindMatches(ctx context.Context, q MatchQuery) (MatchResult, error) {
	trimAll(&q.RawRequirement, &q.Location, &q.Duration)
	if err := s.check(q); err != nil {
		return MatchResult{}, err
	}

	detected := s.extractor.Extract(ctx, q.RawRequirement, tags.KindNeeds)
	if detected.IsInvalid() {
		return MatchResult{}, validationError("requirement does not describe a realistic volunteering need")
	}

	volunteers, err := s.store.ListVolunteers(ctx, q.Location)
	if err != nil {
		return MatchResult{}, fmt.Errorf("list volunteers: %w", translate(err))
	}

	need := model.Need{
		Needs:    detected.Strings(),
		Location: q.Location,
		Duration: metadata.DurationOr(q.Duration, q.RawRequirement),
	}

	candidates := make(filtering.Candidates[model.Volunteer], 0, len(volunteers))
	for _, v := range volunteers {
		candidates = append(candidates, matching.Ranked[model.Volunteer]{ID: v.ID, Item: v, Result: matching.Score(v, need)})
	}

	kept, err := filterAndRank(ctx, &filtering.Config{MinimumScore: s.minimumScore}, s.logger, candidates)
	if err != nil {
		return MatchResult{}, err
	}

	matches := make([]VolunteerMatch, 0, len(kept))
	for _, c := range kept {
		matches = append(matches, VolunteerMatch{Volunteer: c.Item, Result: c.Result})
	}

	s.logger.Debug("volunteer matches",
		zap.Strings("detected", detected.Strings()),
		zap.Int("candidates", len(volunteers)),
		zap.Int("matches", len(matches)),
	)
	return MatchResult{Skills: detected, Matches: matches}, nil
}

// FindOpportunities ranks posts in the volunteer's location against the
// volunteer's stored skills.
func (s *Service) FindOpportunities(ctx context.Context, volunteerID string, q OpportunityQuery) (OpportunityResult, error) {
	v, err := s.store.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return OpportunityResult{}, translate(err)
	}

	needs, err := s.store.ListNeeds(ctx, store.NeedQuery{Location: v.Location})
	if err != nil {
		return OpportunityResult{}, fmt.Errorf("list needs: %w", translate(err))
	}

	apps, err := s.store.ListApplicationsByVolunteer(ctx, v.ID)
	if err != nil {
		return OpportunityResult{}, fmt.Errorf("list applications: %w", translate(err))
	}
	applied := make(map[string]bool, len(apps))
	for _, a := range apps {
		applied[a.NeedID] = true
	}

	candidates := make(filtering.Candidates[model.Need], 0, len(needs))
	for _, n := range needs {
		candidates = append(candidates, matching.Ranked[model.Need]{ID: n.ID, Item: n, Result: matching.Score(v, n)})
	}

	var exclude []string
	if q.ExcludeApplied {
		for id := range applied {
			exclude = append(exclude, id)
		}
	}

	kept, err := filterAndRank(ctx, &filtering.Config{MinimumScore: s.minimumScore, ExcludeIDs: exclude}, s.logger, candidates)
	if err != nil {
		return OpportunityResult{}, err
	}

	matches := make([]NeedMatch, 0, len(kept))
	for _, c := range kept {
		matches = append(matches, NeedMatch{Need: c.Item, Result: c.Result, Applied: applied[c.ID]})
	}

	return OpportunityResult{Skills: tags.NewSet(v.Skills...), Matches: matches}, nil
}

// filterAndRank runs the candidate pipeline and ranks what is left.
func filterAndRank[T any](ctx context.Context, cfg *filtering.Config, log *zap.Logger, c filtering.Candidates[T]) (filtering.Candidates[T], error) {
	steps := filtering.Default[T]()
	if len(cfg.ExcludeIDs) == 0 {
		filtering.DisableByName(steps, filtering.ExcludeIDsName, "nothing to exclude")
	}
	log.Debug("candidate filters", zap.Any("steps", filtering.Describe(steps)))

	kept, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: log}, steps, c)
	if err != nil {
		return nil, fmt.Errorf("filter candidates: %w", err)
	}

	matching.Rank(kept)
	return kept, nil
}

// GenerateMatch scores one volunteer against one post and stores the result.
func (s *Service) GenerateMatch(ctx context.Context, volunteerID, needID string) (model.Match, error) {
	trimAll(&volunteerID, &needID)
	if volunteerID == "" || needID == "" {
		return model.Match{}, validationError("volunteer_id and ngo_id are required")
	}

	v, err := s.store.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return model.Match{}, translate(err)
	}
	n, err := s.store.GetNeed(ctx, needID)
	if err != nil {
		return model.Match{}, translate(err)
	}

	result := matching.Score(v, n)
	saved, err := s.store.CreateMatch(ctx, model.Match{
		ID:          s.newID(),
		VolunteerID: v.ID,
		NeedID:      n.ID,
		Score:       result.Value,
		Explanation: result.Explanation,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return model.Match{}, fmt.Errorf("save match: %w", translate(err))
	}
	return saved, nil
}

// EstimateImpact projects a year of weekly volunteering in skill.
func (s *Service) EstimateImpact(skill string, weeklyHours int) (impact.Estimate, error) {
	if strings.TrimSpace(skill) == "" {
		skill = impact.GeneralSkill
	}
	est, err := impact.Calculate(skill, weeklyHours)
	if err != nil {
		return impact.Estimate{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return est, nil
}

// ImpactSkills lists the skills with their own impact benchmark.
func (s *Service) ImpactSkills() []string {
	return impact.Skills()
}
