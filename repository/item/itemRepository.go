// repository/item/repo.go
package itemrepo

import (
	"context"
	"database/sql"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	List(ctx context.Context) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)

	// OwnerOf resolves item ownership for self-rental and seller checks.
	// Returns sql.ErrNoRows when the item does not exist.
	OwnerOf(ctx context.Context, itemID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, it *model.Item) error {
	const q = `
		INSERT INTO items (owner_id, name, category, deposit_amount)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, it.OwnerID, it.Name, it.Category, it.DepositAmount).
		Scan(&it.ID, &it.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]model.Item, error) {
	const q = `
		SELECT id, owner_id, name, category, deposit_amount, created_at
		FROM items
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Category, &it.DepositAmount, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Item, error) {
	const q = `
		SELECT id, owner_id, name, category, deposit_amount, created_at
		FROM items
		WHERE id = $1`
	it := &model.Item{}
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&it.ID, &it.OwnerID, &it.Name, &it.Category, &it.DepositAmount, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repo) OwnerOf(ctx context.Context, itemID int64) (int64, error) {
	const q = `SELECT owner_id FROM items WHERE id = $1`
	var owner int64
	err := r.db.QueryRowContext(ctx, q, itemID).Scan(&owner)
	return owner, err
}
