package service

import (
	"context"
	"fmt"

	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"go.uber.org/zap"
)

// VolunteerInput is the body of a profile submission. Submitting again for
// the same user replaces the profile.
type VolunteerInput struct {
	UserID         string `json:"user_id" validate:"required"`
	FullName       string `json:"full_name" validate:"required"`
	ContactNo      string `json:"contact_no" validate:"required,len=10,numeric"`
	Email          string `json:"email" validate:"omitempty,email"`
	ResumeURL      string `json:"resume_url" validate:"omitempty,url"`
	RawDescription string `json:"raw_description" validate:"required"`
	Location       string `json:"location"`
	Availability   string `json:"availability"`
}

// InterestInput updates what a volunteer wants to do.
type InterestInput struct {
	RawDescription string `json:"raw_description" validate:"required"`
	Location       string `json:"location"`
	Availability   string `json:"availability"`
	Email          string `json:"email" validate:"omitempty,email"`
}

func (s *Service) CreateVolunteer(ctx context.Context, in VolunteerInput) (model.Volunteer, tags.Set, error) {
	trimAll(&in.UserID, &in.FullName, &in.ContactNo, &in.Email, &in.ResumeURL, &in.RawDescription, &in.Location, &in.Availability)
	if err := s.check(in); err != nil {
		return model.Volunteer{}, nil, err
	}

	skills, err := s.extractSkills(ctx, in.RawDescription)
	if err != nil {
		return model.Volunteer{}, nil, err
	}

	now := s.now()
	saved, err := s.store.UpsertVolunteer(ctx, model.Volunteer{
		ID:             in.UserID,
		FullName:       in.FullName,
		ContactNo:      in.ContactNo,
		Email:          in.Email,
		ResumeURL:      in.ResumeURL,
		RawDescription: in.RawDescription,
		Skills:         skills.Strings(),
		Location:       in.Location,
		Availability:   in.Availability,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return model.Volunteer{}, nil, fmt.Errorf("save volunteer: %w", translate(err))
	}

	s.logger.Info("volunteer profile saved",
		zap.String(logger.FieldVolunteerID, saved.ID),
		zap.Strings("skills", saved.Skills),
	)
	return saved, skills, nil
}

// UpdateVolunteerInterest re-tags a volunteer from a new description. Empty
// optional fields keep their stored values.
func (s *Service) UpdateVolunteerInterest(ctx context.Context, id string, in InterestInput) (model.Volunteer, tags.Set, error) {
	trimAll(&id, &in.RawDescription, &in.Location, &in.Availability, &in.Email)
	if id == "" {
		return model.Volunteer{}, nil, validationError("volunteer id is required")
	}
	if err := s.check(in); err != nil {
		return model.Volunteer{}, nil, err
	}

	current, err := s.store.GetVolunteer(ctx, id)
	if err != nil {
		return model.Volunteer{}, nil, translate(err)
	}

	skills, err := s.extractSkills(ctx, in.RawDescription)
	if err != nil {
		return model.Volunteer{}, nil, err
	}

	current.RawDescription = in.RawDescription
	current.Skills = skills.Strings()
	if in.Location != "" {
		current.Location = in.Location
	}
	if in.Availability != "" {
		current.Availability = in.Availability
	}
	if in.Email != "" {
		current.Email = in.Email
	}
	current.UpdatedAt = s.now()

	saved, err := s.store.UpsertVolunteer(ctx, current)
	if err != nil {
		return model.Volunteer{}, nil, fmt.Errorf("update volunteer: %w", translate(err))
	}
	return saved, skills, nil
}

func (s *Service) GetVolunteer(ctx context.Context, id string) (model.Volunteer, error) {
	v, err := s.store.GetVolunteer(ctx, id)
	return v, translate(err)
}

func (s *Service) extractSkills(ctx context.Context, text string) (tags.Set, error) {
	skills := s.extractor.Extract(ctx, text, tags.KindSkills)
	if skills.IsInvalid() {
		return nil, validationError("description does not describe realistic volunteer skills")
	}
	return skills, nil
}
