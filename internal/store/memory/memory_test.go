package memory

import (
	"context"
	"testing"
	"time"

	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolunteerUpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := New()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.UpsertVolunteer(ctx, model.Volunteer{ID: "u1", FullName: "Asha", Skills: []string{"Teaching"}, CreatedAt: created})
	require.NoError(t, err)

	_, err = s.UpsertVolunteer(ctx, model.Volunteer{ID: "u1", FullName: "Asha K", Skills: []string{"Driving"}, CreatedAt: created.Add(time.Hour)})
	require.NoError(t, err)

	got, err := s.GetVolunteer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.FullName)
	assert.Equal(t, []string{"Driving"}, got.Skills)
	assert.True(t, got.CreatedAt.Equal(created))

	got.Skills[0] = "mutated"
	again, err := s.GetVolunteer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Driving", again.Skills[0], "callers must not share slices with the store")

	_, err = s.GetVolunteer(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListVolunteersByLocationSubstring(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, v := range []model.Volunteer{
		{ID: "c", Location: "Pune"},
		{ID: "a", Location: "Navi Mumbai"},
		{ID: "b", Location: "mumbai"},
	} {
		_, err := s.UpsertVolunteer(ctx, v)
		require.NoError(t, err)
	}

	got, err := s.ListVolunteers(ctx, "MUMBAI")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	all, err := s.ListVolunteers(ctx, " ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNeedsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"n1", "n2", "n3"} {
		_, err := s.CreateNeed(ctx, model.Need{ID: id, UserID: "ngo", Location: "Pune", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err := s.CreateNeed(ctx, model.Need{ID: "other", UserID: "ngo2", Location: "Delhi", CreatedAt: base})
	require.NoError(t, err)

	got, err := s.ListNeeds(ctx, store.NeedQuery{UserID: "ngo"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"n3", "n2", "n1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	byLocation, err := s.ListNeeds(ctx, store.NeedQuery{Location: "del"})
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, "other", byLocation[0].ID)

	_, err = s.CreateNeed(ctx, model.Need{ID: "n1"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestApplicationsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateNeed(ctx, model.Need{ID: "n1"})
	require.NoError(t, err)

	app, err := s.CreateApplication(ctx, model.Application{ID: "a1", NeedID: "n1", VolunteerID: "u1", Interview: model.Interview{Status: model.InterviewPending}})
	require.NoError(t, err)
	assert.Equal(t, model.InterviewPending, app.Status)

	_, err = s.CreateApplication(ctx, model.Application{ID: "a2", NeedID: "n1", VolunteerID: "u1"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	updated, err := s.UpdateInterview(ctx, "a1", model.Interview{Status: model.InterviewScheduled, Date: "2026-11-02", Time: "10:00", MeetLink: "https://meet.example.com/x"})
	require.NoError(t, err)
	assert.Equal(t, model.InterviewScheduled, updated.Status)

	_, err = s.UpdateInterview(ctx, "missing", model.Interview{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	byVolunteer, err := s.ListApplicationsByVolunteer(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byVolunteer, 1)

	deleted, err := s.DeleteApplicationsByNeed(ctx, "n1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	byNeed, err := s.ListApplicationsByNeed(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, byNeed)
}

func TestDeleteOrphanApplications(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateNeed(ctx, model.Need{ID: "kept"})
	require.NoError(t, err)
	_, err = s.CreateApplication(ctx, model.Application{ID: "a1", NeedID: "kept", VolunteerID: "u1"})
	require.NoError(t, err)
	_, err = s.CreateApplication(ctx, model.Application{ID: "a2", NeedID: "gone", VolunteerID: "u1"})
	require.NoError(t, err)

	deleted, err := s.DeleteOrphanApplications(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = s.GetApplication(ctx, "a1")
	assert.NoError(t, err)
	_, err = s.GetApplication(ctx, "a2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteNeed(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateNeed(ctx, model.Need{ID: "n1"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteNeed(ctx, "n1"))
	assert.ErrorIs(t, s.DeleteNeed(ctx, "n1"), store.ErrNotFound)
}
