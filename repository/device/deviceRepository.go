// repository/device/repo.go
package devicerepo

import (
	"context"
	"database/sql"
)

type Repo interface {
	// UpsertToken registers or replaces a user's push destination.
	UpsertToken(ctx context.Context, userID int64, token string) error

	// TokenByUser returns sql.ErrNoRows when the user has no registered
	// destination; callers treat that as a normal, non-error state.
	TokenByUser(ctx context.Context, userID int64) (string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) UpsertToken(ctx context.Context, userID int64, token string) error {
	const q = `
		INSERT INTO push_tokens (user_id, token, updated_at)
		VALUES ($1,$2,NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, q, userID, token)
	return err
}

func (r *repo) TokenByUser(ctx context.Context, userID int64) (string, error) {
	const q = `SELECT token FROM push_tokens WHERE user_id = $1`
	var token string
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&token)
	return token, err
}
