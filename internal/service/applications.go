package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/smartserve-ai/smartserve/internal/events"
	"github.com/smartserve-ai/smartserve/internal/interview"
	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/model"
	"go.uber.org/zap"
)

type ApplyInput struct {
	NeedID      string `json:"ngo_post_id" validate:"required"`
	VolunteerID string `json:"volunteer_id" validate:"required"`
}

// Applicant is an application shown to the NGO, with the applicant's profile
// when it still exists.
type Applicant struct {
	model.Application
	Volunteer *model.Volunteer `json:"volunteer,omitempty"`
}

// UpcomingInterview is a scheduled interview shown to the volunteer.
type UpcomingInterview struct {
	model.Application
	OrgName  string `json:"org_name"`
	Location string `json:"location"`
}

// Apply records a volunteer's application to a post. Applying twice is a
// conflict.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (model.Application, error) {
	trimAll(&in.NeedID, &in.VolunteerID)
	if err := s.check(in); err != nil {
		return model.Application{}, err
	}

	if _, err := s.store.GetNeed(ctx, in.NeedID); err != nil {
		return model.Application{}, translate(err)
	}
	if _, err := s.store.GetVolunteer(ctx, in.VolunteerID); err != nil {
		return model.Application{}, translate(err)
	}

	now := s.now()
	saved, err := s.store.CreateApplication(ctx, model.Application{
		ID:          s.newID(),
		NeedID:      in.NeedID,
		VolunteerID: in.VolunteerID,
		Interview:   model.Interview{Status: model.InterviewPending},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Application{}, fmt.Errorf("save application: %w", translate(err))
	}

	s.publish(ctx, applicationEvent(events.ApplicationCreated, saved))
	s.logger.Info("application created", recordOf(saved).Fields()...)
	return saved, nil
}

func (s *Service) ListApplicationsForNeed(ctx context.Context, needID string) ([]Applicant, error) {
	if _, err := s.store.GetNeed(ctx, needID); err != nil {
		return nil, translate(err)
	}

	apps, err := s.store.ListApplicationsByNeed(ctx, needID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", translate(err))
	}

	out := make([]Applicant, 0, len(apps))
	for _, a := range apps {
		applicant := Applicant{Application: a}
		v, err := s.store.GetVolunteer(ctx, a.VolunteerID)
		if err == nil {
			applicant.Volunteer = &v
		} else if err = translate(err); !isNotFound(err) {
			return nil, fmt.Errorf("load applicant %s: %w", a.VolunteerID, err)
		}
		out = append(out, applicant)
	}
	return out, nil
}

// ListInterviews returns the volunteer's scheduled interviews, earliest first.
// Interviews for posts that no longer exist are skipped.
func (s *Service) ListInterviews(ctx context.Context, volunteerID string) ([]UpcomingInterview, error) {
	if _, err := s.store.GetVolunteer(ctx, volunteerID); err != nil {
		return nil, translate(err)
	}

	apps, err := s.store.ListApplicationsByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", translate(err))
	}

	out := make([]UpcomingInterview, 0)
	for _, a := range apps {
		if a.Status != model.InterviewScheduled {
			continue
		}
		n, err := s.store.GetNeed(ctx, a.NeedID)
		if err != nil {
			err = translate(err)
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("load need %s: %w", a.NeedID, err)
		}
		out = append(out, UpcomingInterview{Application: a, OrgName: n.OrgName, Location: n.Location})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// ScheduleInterview sets or moves the interview slot of an application.
func (s *Service) ScheduleInterview(ctx context.Context, applicationID string, slot interview.Slot) (model.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return model.Application{}, translate(err)
	}

	next, err := interview.Schedule(app.Interview, slot)
	if err != nil {
		return model.Application{}, translate(err)
	}

	return s.saveInterview(ctx, app, next, events.InterviewScheduled)
}

// CancelInterview returns a scheduled interview to pending.
func (s *Service) CancelInterview(ctx context.Context, applicationID string) (model.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return model.Application{}, translate(err)
	}

	next, err := interview.Cancel(app.Interview)
	if err != nil {
		return model.Application{}, translate(err)
	}

	return s.saveInterview(ctx, app, next, events.InterviewCancelled)
}

func (s *Service) saveInterview(ctx context.Context, app model.Application, next model.Interview, t events.Type) (model.Application, error) {
	saved, err := s.store.UpdateInterview(ctx, app.ID, next)
	if err != nil {
		return model.Application{}, fmt.Errorf("update interview: %w", translate(err))
	}

	s.publish(ctx, applicationEvent(t, saved))
	s.logger.Info("interview updated", append(recordOf(saved).Fields(),
		zap.String("status", string(saved.Status)),
		zap.String("date", saved.Date),
		zap.String("time", saved.Time),
	)...)
	return saved, nil
}

func recordOf(a model.Application) logger.Record {
	return logger.Record{ApplicationID: a.ID, NeedID: a.NeedID, VolunteerID: a.VolunteerID}
}

func applicationEvent(t events.Type, a model.Application) events.Event {
	ev := events.New(t)
	ev.ApplicationID = a.ID
	ev.NeedID = a.NeedID
	ev.VolunteerID = a.VolunteerID
	ev.Status = string(a.Status)
	return ev
}
