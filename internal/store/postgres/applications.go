package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/smartserve-ai/smartserve/internal/model"
)

var applicationColumns = []string{
	"id", "ngo_post_id", "volunteer_id", "interview_status", "interview_date",
	"interview_time", "meet_link", "created_at", "updated_at",
}

func scanApplication(row pgx.Row) (model.Application, error) {
	var (
		a      model.Application
		status string
	)
	err := row.Scan(
		&a.ID, &a.NeedID, &a.VolunteerID, &status, &a.Date,
		&a.Time, &a.MeetLink, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Status = model.InterviewStatus(status)
	return a, err
}

func orphanApplicationsQuery() sq.DeleteBuilder {
	return psql.Delete("applications").
		Where("NOT EXISTS (SELECT 1 FROM ngos WHERE ngos.id = applications.ngo_post_id)")
}

func (db *DB) CreateApplication(ctx context.Context, a model.Application) (model.Application, error) {
	status := a.Status
	if status == "" {
		status = model.InterviewPending
	}

	query, args, err := psql.Insert("applications").
		Columns(applicationColumns...).
		Values(a.ID, a.NeedID, a.VolunteerID, string(status), a.Date, a.Time, a.MeetLink, a.CreatedAt, a.UpdatedAt).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return model.Application{}, fmt.Errorf("build insert application: %w", err)
	}

	saved, err := scanApplication(db.pool.QueryRow(ctx, query, args...))
	return saved, mapError(err, fmt.Sprintf("application for need %q", a.NeedID))
}

func (db *DB) GetApplication(ctx context.Context, id string) (model.Application, error) {
	query, args, err := psql.Select(applicationColumns...).From("applications").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Application{}, fmt.Errorf("build get application: %w", err)
	}

	a, err := scanApplication(db.pool.QueryRow(ctx, query, args...))
	return a, mapError(err, fmt.Sprintf("application %q", id))
}

func (db *DB) UpdateInterview(ctx context.Context, id string, iv model.Interview) (model.Application, error) {
	query, args, err := psql.Update("applications").
		Set("interview_status", string(iv.Status)).
		Set("interview_date", iv.Date).
		Set("interview_time", iv.Time).
		Set("meet_link", iv.MeetLink).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return model.Application{}, fmt.Errorf("build update interview: %w", err)
	}

	a, err := scanApplication(db.pool.QueryRow(ctx, query, args...))
	return a, mapError(err, fmt.Sprintf("application %q", id))
}

func (db *DB) ListApplicationsByNeed(ctx context.Context, needID string) ([]model.Application, error) {
	return db.listApplications(ctx, sq.Eq{"ngo_post_id": needID})
}

func (db *DB) ListApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]model.Application, error) {
	return db.listApplications(ctx, sq.Eq{"volunteer_id": volunteerID})
}

func (db *DB) listApplications(ctx context.Context, where sq.Eq) ([]model.Application, error) {
	query, args, err := psql.Select(applicationColumns...).
		From("applications").
		Where(where).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list applications: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Application, error) {
		return scanApplication(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan applications: %w", err)
	}
	return out, nil
}

func (db *DB) DeleteApplicationsByNeed(ctx context.Context, needID string) (int64, error) {
	query, args, err := psql.Delete("applications").Where(sq.Eq{"ngo_post_id": needID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete applications: %w", err)
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete applications of need %q: %w", needID, err)
	}
	return tag.RowsAffected(), nil
}

func (db *DB) DeleteOrphanApplications(ctx context.Context) (int64, error) {
	query, args, err := orphanApplicationsQuery().ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete orphan applications: %w", err)
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete orphan applications: %w", err)
	}
	return tag.RowsAffected(), nil
}
