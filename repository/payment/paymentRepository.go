// repository/payment/repo.go
package paymentrepo

import (
	"context"
	"database/sql"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
)

type Repo interface {
	Insert(ctx context.Context, p *model.DepositPayment) error

	// ByIntentID resolves the local record for a processor intent id.
	// Returns sql.ErrNoRows when absent.
	ByIntentID(ctx context.Context, intentID string) (*model.DepositPayment, error)

	// LatestByUserItem returns the most recent record by created_at for
	// (user, item); that row is authoritative for status queries.
	LatestByUserItem(ctx context.Context, userID, itemID int64) (*model.DepositPayment, error)

	// MarkSucceeded flips CREATED to SUCCEEDED. Returns false when the row
	// was not in CREATED, which the caller treats as already-confirmed.
	MarkSucceeded(ctx context.Context, id int64) (bool, error)

	// MarkRefunded flips SUCCEEDED to REFUNDED and records the processor's
	// refund id. Returns false when the row was not refundable.
	MarkRefunded(ctx context.Context, id int64, refundID string) (bool, error)

	ListByUser(ctx context.Context, userID int64) ([]model.DepositPayment, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const paymentCols = `id, user_id, rental_item_id, payment_intent_id, amount, status, created_at, succeeded_at, refunded_at, refund_id`

func (r *repo) Insert(ctx context.Context, p *model.DepositPayment) error {
	const q = `
		INSERT INTO deposit_payments (user_id, rental_item_id, payment_intent_id, amount, status)
		VALUES ($1,$2,$3,$4,'CREATED')
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, p.UserID, p.RentalItemID, p.PaymentIntentID, p.Amount).
		Scan(&p.ID, &p.CreatedAt)
}

func scanPayment(row *sql.Row) (*model.DepositPayment, error) {
	p := &model.DepositPayment{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.RentalItemID, &p.PaymentIntentID, &p.Amount,
		&p.Status, &p.CreatedAt, &p.SucceededAt, &p.RefundedAt, &p.RefundID,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) ByIntentID(ctx context.Context, intentID string) (*model.DepositPayment, error) {
	const q = `
		SELECT ` + paymentCols + `
		FROM deposit_payments
		WHERE payment_intent_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return scanPayment(r.db.QueryRowContext(ctx, q, intentID))
}

func (r *repo) LatestByUserItem(ctx context.Context, userID, itemID int64) (*model.DepositPayment, error) {
	const q = `
		SELECT ` + paymentCols + `
		FROM deposit_payments
		WHERE user_id = $1 AND rental_item_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return scanPayment(r.db.QueryRowContext(ctx, q, userID, itemID))
}

func (r *repo) MarkSucceeded(ctx context.Context, id int64) (bool, error) {
	const q = `
		UPDATE deposit_payments
		SET status = 'SUCCEEDED', succeeded_at = NOW()
		WHERE id = $1 AND status = 'CREATED'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) MarkRefunded(ctx context.Context, id int64, refundID string) (bool, error) {
	const q = `
		UPDATE deposit_payments
		SET status = 'REFUNDED', refunded_at = NOW(), refund_id = $2
		WHERE id = $1 AND status = 'SUCCEEDED'`
	res, err := r.db.ExecContext(ctx, q, id, refundID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.DepositPayment, error) {
	const q = `
		SELECT ` + paymentCols + `
		FROM deposit_payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DepositPayment
	for rows.Next() {
		var p model.DepositPayment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.RentalItemID, &p.PaymentIntentID, &p.Amount,
			&p.Status, &p.CreatedAt, &p.SucceededAt, &p.RefundedAt, &p.RefundID,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
