// Package memory is an in-process store used when no database is configured
// and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	volunteers   map[string]model.Volunteer
	needs        map[string]model.Need
	applications map[string]model.Application
	matches      map[string]model.Match
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		volunteers:   make(map[string]model.Volunteer),
		needs:        make(map[string]model.Need),
		applications: make(map[string]model.Application),
		matches:      make(map[string]model.Match),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) UpsertVolunteer(_ context.Context, v model.Volunteer) (model.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.volunteers[v.ID]; ok {
		v.CreatedAt = existing.CreatedAt
	}
	v = copyVolunteer(v)
	s.volunteers[v.ID] = v
	return copyVolunteer(v), nil
}

func (s *Store) GetVolunteer(_ context.Context, id string) (model.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.volunteers[id]
	if !ok {
		return model.Volunteer{}, fmt.Errorf("volunteer %q: %w", id, store.ErrNotFound)
	}
	return copyVolunteer(v), nil
}

func (s *Store) ListVolunteers(_ context.Context, location string) ([]model.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Volunteer, 0, len(s.volunteers))
	for _, v := range s.volunteers {
		if containsFold(v.Location, location) {
			out = append(out, copyVolunteer(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateNeed(_ context.Context, n model.Need) (model.Need, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.needs[n.ID]; ok {
		return model.Need{}, fmt.Errorf("need %q: %w", n.ID, store.ErrDuplicate)
	}
	n = copyNeed(n)
	s.needs[n.ID] = n
	return copyNeed(n), nil
}

func (s *Store) GetNeed(_ context.Context, id string) (model.Need, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.needs[id]
	if !ok {
		return model.Need{}, fmt.Errorf("need %q: %w", id, store.ErrNotFound)
	}
	return copyNeed(n), nil
}

func (s *Store) ListNeeds(_ context.Context, q store.NeedQuery) ([]model.Need, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Need, 0)
	for _, n := range s.needs {
		if q.UserID != "" && n.UserID != q.UserID {
			continue
		}
		if !containsFold(n.Location, q.Location) {
			continue
		}
		out = append(out, copyNeed(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteNeed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.needs[id]; !ok {
		return fmt.Errorf("need %q: %w", id, store.ErrNotFound)
	}
	delete(s.needs, id)
	return nil
}

func (s *Store) CreateApplication(_ context.Context, a model.Application) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.applications {
		if existing.ID == a.ID || (existing.NeedID == a.NeedID && existing.VolunteerID == a.VolunteerID) {
			return model.Application{}, fmt.Errorf("application for need %q: %w", a.NeedID, store.ErrDuplicate)
		}
	}
	s.applications[a.ID] = a
	return a, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.applications[id]
	if !ok {
		return model.Application{}, fmt.Errorf("application %q: %w", id, store.ErrNotFound)
	}
	return a, nil
}

func (s *Store) UpdateInterview(_ context.Context, id string, iv model.Interview) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return model.Application{}, fmt.Errorf("application %q: %w", id, store.ErrNotFound)
	}
	a.Interview = iv
	s.applications[id] = a
	return a, nil
}

func (s *Store) ListApplicationsByNeed(_ context.Context, needID string) ([]model.Application, error) {
	return s.listApplications(func(a model.Application) bool { return a.NeedID == needID }), nil
}

func (s *Store) ListApplicationsByVolunteer(_ context.Context, volunteerID string) ([]model.Application, error) {
	return s.listApplications(func(a model.Application) bool { return a.VolunteerID == volunteerID }), nil
}

func (s *Store) listApplications(keep func(model.Application) bool) []model.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Application, 0)
	for _, a := range s.applications {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) DeleteApplicationsByNeed(_ context.Context, needID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, a := range s.applications {
		if a.NeedID == needID {
			delete(s.applications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) DeleteOrphanApplications(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, a := range s.applications {
		if _, ok := s.needs[a.NeedID]; !ok {
			delete(s.applications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) CreateMatch(_ context.Context, m model.Match) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; ok {
		return model.Match{}, fmt.Errorf("match %q: %w", m.ID, store.ErrDuplicate)
	}
	s.matches[m.ID] = m
	return m, nil
}

func containsFold(value, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

func copyVolunteer(v model.Volunteer) model.Volunteer {
	v.Skills = append([]string{}, v.Skills...)
	return v
}

func copyNeed(n model.Need) model.Need {
	n.Needs = append([]string{}, n.Needs...)
	n.Schemes = append([]model.Scheme{}, n.Schemes...)
	return n
}
