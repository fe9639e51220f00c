package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/smartserve-ai/smartserve/internal/model"
)

var volunteerColumns = []string{
	"id", "full_name", "contact_no", "email", "resume_url", "raw_description",
	"ai_skills", "location", "availability", "created_at", "updated_at",
}

func scanVolunteer(row pgx.Row) (model.Volunteer, error) {
	var v model.Volunteer
	err := row.Scan(
		&v.ID, &v.FullName, &v.ContactNo, &v.Email, &v.ResumeURL, &v.RawDescription,
		&v.Skills, &v.Location, &v.Availability, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

func upsertVolunteerQuery(v model.Volunteer) sq.InsertBuilder {
	return psql.Insert("volunteers").
		Columns(volunteerColumns...).
		Values(
			v.ID, v.FullName, v.ContactNo, v.Email, v.ResumeURL, v.RawDescription,
			nonNil(v.Skills), v.Location, v.Availability, v.CreatedAt, v.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			contact_no = EXCLUDED.contact_no,
			email = EXCLUDED.email,
			resume_url = EXCLUDED.resume_url,
			raw_description = EXCLUDED.raw_description,
			ai_skills = EXCLUDED.ai_skills,
			location = EXCLUDED.location,
			availability = EXCLUDED.availability,
			updated_at = EXCLUDED.updated_at`).
		Suffix("RETURNING " + joinColumns(volunteerColumns))
}

func listVolunteersQuery(location string) sq.SelectBuilder {
	q := psql.Select(volunteerColumns...).From("volunteers").OrderBy("id")
	if location != "" {
		q = q.Where(ilike("location", location))
	}
	return q
}

func (db *DB) UpsertVolunteer(ctx context.Context, v model.Volunteer) (model.Volunteer, error) {
	query, args, err := upsertVolunteerQuery(v).ToSql()
	if err != nil {
		return model.Volunteer{}, fmt.Errorf("build upsert volunteer: %w", err)
	}

	saved, err := scanVolunteer(db.pool.QueryRow(ctx, query, args...))
	return saved, mapError(err, "upsert volunteer")
}

func (db *DB) GetVolunteer(ctx context.Context, id string) (model.Volunteer, error) {
	query, args, err := psql.Select(volunteerColumns...).From("volunteers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Volunteer{}, fmt.Errorf("build get volunteer: %w", err)
	}

	v, err := scanVolunteer(db.pool.QueryRow(ctx, query, args...))
	return v, mapError(err, fmt.Sprintf("volunteer %q", id))
}

func (db *DB) ListVolunteers(ctx context.Context, location string) ([]model.Volunteer, error) {
	query, args, err := listVolunteersQuery(location).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list volunteers: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query volunteers: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Volunteer, error) {
		return scanVolunteer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan volunteers: %w", err)
	}
	return out, nil
}
