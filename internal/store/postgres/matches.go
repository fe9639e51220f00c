package postgres

import (
	"context"
	"fmt"

	"github.com/smartserve-ai/smartserve/internal/model"
)

var matchColumns = []string{"id", "volunteer_id", "ngo_id", "match_score", "explanation", "created_at"}

func (db *DB) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	query, args, err := psql.Insert("matches").
		Columns(matchColumns...).
		Values(m.ID, m.VolunteerID, m.NeedID, m.Score, m.Explanation, m.CreatedAt).
		Suffix("RETURNING " + joinColumns(matchColumns)).
		ToSql()
	if err != nil {
		return model.Match{}, fmt.Errorf("build insert match: %w", err)
	}

	var saved model.Match
	err = db.pool.QueryRow(ctx, query, args...).Scan(
		&saved.ID, &saved.VolunteerID, &saved.NeedID, &saved.Score, &saved.Explanation, &saved.CreatedAt,
	)
	return saved, mapError(err, "insert match")
}
