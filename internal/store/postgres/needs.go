package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/store"
)

var needColumns = []string{
	"id", "user_id", "org_name", "contact_info", "email", "raw_requirement",
	"ai_needs", "location", "duration", "schemes", "created_at",
}

func scanNeed(row pgx.Row) (model.Need, error) {
	var (
		n       model.Need
		schemes []byte
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.OrgName, &n.ContactInfo, &n.Email, &n.RawRequirement,
		&n.Needs, &n.Location, &n.Duration, &schemes, &n.CreatedAt,
	)
	if err != nil {
		return n, err
	}
	if len(schemes) > 0 {
		if err := json.Unmarshal(schemes, &n.Schemes); err != nil {
			return n, fmt.Errorf("decode schemes: %w", err)
		}
	}
	if n.Schemes == nil {
		n.Schemes = []model.Scheme{}
	}
	return n, nil
}

func insertNeedQuery(n model.Need) (sq.InsertBuilder, error) {
	schemes := n.Schemes
	if schemes == nil {
		schemes = []model.Scheme{}
	}
	encoded, err := json.Marshal(schemes)
	if err != nil {
		return sq.InsertBuilder{}, fmt.Errorf("encode schemes: %w", err)
	}

	return psql.Insert("ngos").
		Columns(needColumns...).
		Values(
			n.ID, n.UserID, n.OrgName, n.ContactInfo, n.Email, n.RawRequirement,
			nonNil(n.Needs), n.Location, n.Duration, string(encoded), n.CreatedAt,
		).
		Suffix("RETURNING " + joinColumns(needColumns)), nil
}

func listNeedsQuery(q store.NeedQuery) sq.SelectBuilder {
	query := psql.Select(needColumns...).From("ngos").OrderBy("created_at DESC", "id")
	if q.UserID != "" {
		query = query.Where(sq.Eq{"user_id": q.UserID})
	}
	if strings.TrimSpace(q.Location) != "" {
		query = query.Where(ilike("location", q.Location))
	}
	return query
}

func (db *DB) CreateNeed(ctx context.Context, n model.Need) (model.Need, error) {
	builder, err := insertNeedQuery(n)
	if err != nil {
		return model.Need{}, err
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return model.Need{}, fmt.Errorf("build insert need: %w", err)
	}

	saved, err := scanNeed(db.pool.QueryRow(ctx, query, args...))
	return saved, mapError(err, "insert need")
}

func (db *DB) GetNeed(ctx context.Context, id string) (model.Need, error) {
	query, args, err := psql.Select(needColumns...).From("ngos").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Need{}, fmt.Errorf("build get need: %w", err)
	}

	n, err := scanNeed(db.pool.QueryRow(ctx, query, args...))
	return n, mapError(err, fmt.Sprintf("need %q", id))
}

func (db *DB) ListNeeds(ctx context.Context, q store.NeedQuery) ([]model.Need, error) {
	query, args, err := listNeedsQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list needs: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query needs: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Need, error) {
		return scanNeed(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan needs: %w", err)
	}
	return out, nil
}

func (db *DB) DeleteNeed(ctx context.Context, id string) error {
	query, args, err := psql.Delete("ngos").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete need: %w", err)
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete need %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("need %q: %w", id, store.ErrNotFound)
	}
	return nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
