package service

import (
	"context"
	"fmt"

	"github.com/smartserve-ai/smartserve/internal/events"
	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/metadata"
	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/store"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"go.uber.org/zap"
)

type SchemeInput struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"desc"`
	PDFURL      string `json:"pdf_url" validate:"omitempty,url"`
}

// NeedInput is the body of an NGO post.
type NeedInput struct {
	UserID         string        `json:"user_id" validate:"required"`
	OrgName        string        `json:"org_name" validate:"required"`
	ContactInfo    string        `json:"contact_info" validate:"required,len=10,numeric"`
	Email          string        `json:"email" validate:"omitempty,email"`
	RawRequirement string        `json:"raw_requirement" validate:"required"`
	Location       string        `json:"location"`
	Duration       string        `json:"duration"`
	Schemes        []SchemeInput `json:"schemes" validate:"dive"`
}

func (s *Service) CreateNeed(ctx context.Context, in NeedInput) (model.Need, tags.Set, error) {
	trimAll(&in.UserID, &in.OrgName, &in.ContactInfo, &in.Email, &in.RawRequirement, &in.Location, &in.Duration)
	for i := range in.Schemes {
		sc := &in.Schemes[i]
		trimAll(&sc.ID, &sc.Name, &sc.Description, &sc.PDFURL)
	}
	if err := s.check(in); err != nil {
		return model.Need{}, nil, err
	}

	needs := s.extractor.Extract(ctx, in.RawRequirement, tags.KindNeeds)
	if needs.IsInvalid() {
		return model.Need{}, nil, validationError("requirement does not describe a realistic volunteering need")
	}

	schemes := make([]model.Scheme, 0, len(in.Schemes))
	for _, sc := range in.Schemes {
		if sc.ID == "" {
			sc.ID = s.newID()
		}
		schemes = append(schemes, model.Scheme{ID: sc.ID, Name: sc.Name, Description: sc.Description, PDFURL: sc.PDFURL})
	}

	saved, err := s.store.CreateNeed(ctx, model.Need{
		ID:             s.newID(),
		UserID:         in.UserID,
		OrgName:        in.OrgName,
		ContactInfo:    in.ContactInfo,
		Email:          in.Email,
		RawRequirement: in.RawRequirement,
		Needs:          needs.Strings(),
		Location:       in.Location,
		Duration:       metadata.DurationOr(in.Duration, in.RawRequirement),
		Schemes:        schemes,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return model.Need{}, nil, fmt.Errorf("save need: %w", translate(err))
	}

	s.logger.Info("need posted", append(
		logger.Record{NeedID: saved.ID, UserID: saved.UserID}.Fields(),
		zap.Strings("needs", saved.Needs),
	)...)
	return saved, needs, nil
}

func (s *Service) GetNeed(ctx context.Context, id string) (model.Need, error) {
	n, err := s.store.GetNeed(ctx, id)
	return n, translate(err)
}

// ListNeedsByOwner returns an NGO user's posts, newest first.
func (s *Service) ListNeedsByOwner(ctx context.Context, userID string) ([]model.Need, error) {
	trimAll(&userID)
	if userID == "" {
		return nil, validationError("user_id is required")
	}
	needs, err := s.store.ListNeeds(ctx, store.NeedQuery{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list needs: %w", translate(err))
	}
	return needs, nil
}

// DeleteNeed removes a post's applications and then the post. The two deletes
// are separate; applications orphaned by a failure in between are removed by
// the sweeper.
func (s *Service) DeleteNeed(ctx context.Context, id string) (int64, error) {
	if _, err := s.store.GetNeed(ctx, id); err != nil {
		return 0, translate(err)
	}

	deleted, err := s.store.DeleteApplicationsByNeed(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", translate(err))
	}

	if err := s.store.DeleteNeed(ctx, id); err != nil {
		return deleted, fmt.Errorf("delete need: %w", translate(err))
	}

	ev := events.New(events.NeedDeleted)
	ev.NeedID = id
	s.publish(ctx, ev)

	s.logger.Info("need deleted", zap.String(logger.FieldNeedID, id), zap.Int64("applications_deleted", deleted))
	return deleted, nil
}
