// repository/chat/repo.go
package chatrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
)

type Repo interface {
	// FindRoom looks up the room for an unordered participant pair and item.
	// Returns sql.ErrNoRows when absent.
	FindRoom(ctx context.Context, userA, userB, itemID int64) (*model.ChatRoom, error)

	// CreateRoom inserts a room guarded by the unique index on the sorted
	// pair + item. Under a concurrent create the loser gets ok=false and
	// must re-select the winner's row.
	CreateRoom(ctx context.Context, room *model.ChatRoom) (ok bool, err error)

	// BackfillBuyer repairs a legacy row that was written without a buyer.
	BackfillBuyer(ctx context.Context, roomID, buyerID int64) error

	// MergeParticipants is a privileged correction tool; it overwrites the
	// pair columns from the sorted merged set and rejects merges that would
	// exceed two participants.
	MergeParticipants(ctx context.Context, roomID int64, userIDs []int64) error

	GetRoom(ctx context.Context, roomID int64) (*model.ChatRoom, error)
	ListRooms(ctx context.Context, userID int64) ([]model.ChatRoom, error)
	FindRoomByBuyerItem(ctx context.Context, buyerID, itemID int64) (*model.ChatRoom, error)

	// AppendMessage stores a message with a server-assigned timestamp and
	// refreshes the room's last_message denormalized field atomically.
	AppendMessage(ctx context.Context, m *model.Message) error

	ListMessages(ctx context.Context, roomID int64) ([]model.Message, error)
	GetMessage(ctx context.Context, roomID, messageID int64) (*model.Message, error)

	// MarkRead sets is_read on one message; already-read rows are untouched.
	MarkRead(ctx context.Context, roomID, messageID int64) error

	// MarkRoomRead sets is_read on every unread message in the room that was
	// not sent by readerID.
	MarkRoomRead(ctx context.Context, roomID, readerID int64) (int64, error)

	HasSystemMessage(ctx context.Context, roomID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const roomCols = `id, rental_item_id, COALESCE(buyer_id, 0), seller_id, last_message, created_at`

func scanRoom(row *sql.Row) (*model.ChatRoom, error) {
	room := &model.ChatRoom{}
	err := row.Scan(&room.ID, &room.RentalItemID, &room.BuyerID, &room.SellerID, &room.LastMessage, &room.CreatedAt)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *repo) FindRoom(ctx context.Context, userA, userB, itemID int64) (*model.ChatRoom, error) {
	lo, hi := sortPair(userA, userB)
	const q = `
		SELECT ` + roomCols + `
		FROM chat_rooms
		WHERE participant_low = $1 AND participant_high = $2 AND rental_item_id = $3`
	return scanRoom(r.db.QueryRowContext(ctx, q, lo, hi, itemID))
}

func (r *repo) CreateRoom(ctx context.Context, room *model.ChatRoom) (bool, error) {
	lo, hi := sortPair(room.BuyerID, room.SellerID)
	const q = `
		INSERT INTO chat_rooms (participant_low, participant_high, rental_item_id, buyer_id, seller_id, last_message)
		VALUES ($1,$2,$3,$4,$5,'')
		ON CONFLICT (participant_low, participant_high, rental_item_id) DO NOTHING
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q, lo, hi, room.RentalItemID, room.BuyerID, room.SellerID).
		Scan(&room.ID, &room.CreatedAt)
	if err == sql.ErrNoRows {
		// conflict: another caller won the race
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) BackfillBuyer(ctx context.Context, roomID, buyerID int64) error {
	const q = `
		UPDATE chat_rooms
		SET buyer_id = $2
		WHERE id = $1 AND buyer_id IS NULL`
	_, err := r.db.ExecContext(ctx, q, roomID, buyerID)
	return err
}

func (r *repo) MergeParticipants(ctx context.Context, roomID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	lo, hi, err := mergePair(room.Participants(), userIDs)
	if err != nil {
		return err
	}
	const q = `
		UPDATE chat_rooms
		SET participant_low = $2, participant_high = $3
		WHERE id = $1`
	_, err = r.db.ExecContext(ctx, q, roomID, lo, hi)
	return err
}

// mergePair folds userIDs into the room's participant pair. Rooms are
// strictly two-party: the merged set is deduplicated and sorted so the
// outcome never depends on input order, and a set that would exceed two
// participants is rejected instead of silently dropping ids.
func mergePair(current, userIDs []int64) (lo, hi int64, err error) {
	seen := map[int64]bool{}
	var merged []int64
	for _, id := range append(append([]int64(nil), current...), userIDs...) {
		if id != 0 && !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	switch len(merged) {
	case 0:
		return 0, 0, errors.New("no participants to merge")
	case 1:
		return merged[0], merged[0], nil
	case 2:
		return merged[0], merged[1], nil
	default:
		return 0, 0, fmt.Errorf("room holds two participants, merge would yield %d", len(merged))
	}
}

func (r *repo) GetRoom(ctx context.Context, roomID int64) (*model.ChatRoom, error) {
	const q = `
		SELECT ` + roomCols + `
		FROM chat_rooms
		WHERE id = $1`
	return scanRoom(r.db.QueryRowContext(ctx, q, roomID))
}

func (r *repo) ListRooms(ctx context.Context, userID int64) ([]model.ChatRoom, error) {
	const q = `
		SELECT ` + roomCols + `
		FROM chat_rooms
		WHERE participant_low = $1 OR participant_high = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChatRoom
	for rows.Next() {
		var room model.ChatRoom
		if err := rows.Scan(&room.ID, &room.RentalItemID, &room.BuyerID, &room.SellerID, &room.LastMessage, &room.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *repo) FindRoomByBuyerItem(ctx context.Context, buyerID, itemID int64) (*model.ChatRoom, error) {
	const q = `
		SELECT ` + roomCols + `
		FROM chat_rooms
		WHERE buyer_id = $1 AND rental_item_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return scanRoom(r.db.QueryRowContext(ctx, q, buyerID, itemID))
}

func (r *repo) AppendMessage(ctx context.Context, m *model.Message) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		INSERT INTO messages (room_id, sender_id, type, text, amount, sent_at, is_read)
		VALUES ($1,$2,$3,$4,$5,NOW(),FALSE)
		RETURNING id, sent_at`
	if err = tx.QueryRowContext(ctx, q, m.RoomID, m.SenderID, m.Type, m.Text, m.Amount).
		Scan(&m.ID, &m.SentAt); err != nil {
		return err
	}

	const q2 = `
		UPDATE chat_rooms
		SET last_message = $2
		WHERE id = $1`
	if _, err = tx.ExecContext(ctx, q2, m.RoomID, m.Text); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) ListMessages(ctx context.Context, roomID int64) ([]model.Message, error) {
	// total order: sent_at with id as the same-timestamp tie-break
	const q = `
		SELECT id, room_id, sender_id, type, text, amount, sent_at, is_read
		FROM messages
		WHERE room_id = $1
		ORDER BY sent_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Type, &m.Text, &m.Amount, &m.SentAt, &m.IsRead); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) GetMessage(ctx context.Context, roomID, messageID int64) (*model.Message, error) {
	const q = `
		SELECT id, room_id, sender_id, type, text, amount, sent_at, is_read
		FROM messages
		WHERE id = $1 AND room_id = $2`
	m := &model.Message{}
	err := r.db.QueryRowContext(ctx, q, messageID, roomID).
		Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Type, &m.Text, &m.Amount, &m.SentAt, &m.IsRead)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repo) MarkRead(ctx context.Context, roomID, messageID int64) error {
	// is_read only ever moves false -> true; a second mark matches no row
	const q = `
		UPDATE messages
		SET is_read = TRUE
		WHERE id = $1 AND room_id = $2 AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, q, messageID, roomID)
	return err
}

func (r *repo) MarkRoomRead(ctx context.Context, roomID, readerID int64) (int64, error) {
	const q = `
		UPDATE messages
		SET is_read = TRUE
		WHERE room_id = $1 AND sender_id <> $2 AND is_read = FALSE`
	res, err := r.db.ExecContext(ctx, q, roomID, readerID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *repo) HasSystemMessage(ctx context.Context, roomID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM messages WHERE room_id = $1 AND type = 'SYSTEM'
		)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, roomID).Scan(&exists)
	return exists, err
}

func sortPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
