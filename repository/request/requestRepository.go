// repository/request/repo.go
package requestrepo

import (
	"context"
	"database/sql"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
)

type Repo interface {
	// Insert creates a PENDING request. The partial unique index on
	// (item_id, requester_id) WHERE status='PENDING' makes duplicate
	// submission fail with a unique violation instead of a second row.
	Insert(ctx context.Context, req *model.RentalRequest) error

	Get(ctx context.Context, id int64) (*model.RentalRequest, error)

	// Decide flips PENDING to the given status. Returns false when the row
	// was not PENDING anymore, so a concurrent decide loses cleanly.
	Decide(ctx context.Context, id int64, status model.RequestStatus) (bool, error)

	// Confirm flips ACCEPTED to CONFIRMED. Returns false when no row
	// transitioned; the caller distinguishes already-confirmed from invalid.
	Confirm(ctx context.Context, id int64) (bool, error)

	ListByUser(ctx context.Context, userID int64) ([]model.RentalRequest, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, req *model.RentalRequest) error {
	const q = `
		INSERT INTO rental_requests (item_id, requester_id, owner_id, status)
		VALUES ($1,$2,$3,'PENDING')
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, req.ItemID, req.RequesterID, req.OwnerID).
		Scan(&req.ID, &req.CreatedAt)
}

func (r *repo) Get(ctx context.Context, id int64) (*model.RentalRequest, error) {
	const q = `
		SELECT id, item_id, requester_id, owner_id, status, created_at, decided_at, confirmed_at
		FROM rental_requests
		WHERE id = $1`
	req := &model.RentalRequest{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&req.ID, &req.ItemID, &req.RequesterID, &req.OwnerID,
		&req.Status, &req.CreatedAt, &req.DecidedAt, &req.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *repo) Decide(ctx context.Context, id int64, status model.RequestStatus) (bool, error) {
	const q = `
		UPDATE rental_requests
		SET status = $2, decided_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Confirm(ctx context.Context, id int64) (bool, error) {
	const q = `
		UPDATE rental_requests
		SET status = 'CONFIRMED', confirmed_at = NOW()
		WHERE id = $1 AND status = 'ACCEPTED'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.RentalRequest, error) {
	const q = `
		SELECT id, item_id, requester_id, owner_id, status, created_at, decided_at, confirmed_at
		FROM rental_requests
		WHERE requester_id = $1 OR owner_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RentalRequest
	for rows.Next() {
		var req model.RentalRequest
		if err := rows.Scan(
			&req.ID, &req.ItemID, &req.RequesterID, &req.OwnerID,
			&req.Status, &req.CreatedAt, &req.DecidedAt, &req.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
