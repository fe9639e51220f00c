// Package store defines persistence for volunteers, NGO needs, applications
// and match results. Implementations live in the memory and postgres
// subpackages and must behave identically.
package store

import (
	"context"
	"errors"

	"github.com/smartserve-ai/smartserve/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Volunteers interface {
	// UpsertVolunteer inserts v or replaces the profile with the same ID.
	// CreatedAt of an existing profile is kept.
	UpsertVolunteer(ctx context.Context, v model.Volunteer) (model.Volunteer, error)
	GetVolunteer(ctx context.Context, id string) (model.Volunteer, error)
	// ListVolunteers returns volunteers whose location contains location,
	// ignoring case. An empty location returns everyone. Ordered by ID.
	ListVolunteers(ctx context.Context, location string) ([]model.Volunteer, error)
}

// NeedQuery narrows ListNeeds. Empty fields do not filter.
type NeedQuery struct {
	UserID string
	// Location is a case-insensitive substring.
	Location string
}

type Needs interface {
	CreateNeed(ctx context.Context, n model.Need) (model.Need, error)
	GetNeed(ctx context.Context, id string) (model.Need, error)
	// ListNeeds returns matching needs, newest first.
	ListNeeds(ctx context.Context, q NeedQuery) ([]model.Need, error)
	DeleteNeed(ctx context.Context, id string) error
}

type Applications interface {
	// CreateApplication fails with ErrDuplicate when the volunteer already
	// applied to the need.
	CreateApplication(ctx context.Context, a model.Application) (model.Application, error)
	GetApplication(ctx context.Context, id string) (model.Application, error)
	UpdateInterview(ctx context.Context, id string, iv model.Interview) (model.Application, error)
	// ListApplicationsByNeed returns the need's applications, newest first.
	ListApplicationsByNeed(ctx context.Context, needID string) ([]model.Application, error)
	// ListApplicationsByVolunteer returns the volunteer's applications, newest first.
	ListApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]model.Application, error)
	DeleteApplicationsByNeed(ctx context.Context, needID string) (int64, error)
	// DeleteOrphanApplications removes applications whose need no longer exists.
	DeleteOrphanApplications(ctx context.Context) (int64, error)
}

type Matches interface {
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	Volunteers
	Needs
	Applications
	Matches

	Ping(ctx context.Context) error
	Close()
}
