package chatsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	chatrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/chat"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
)

type ErrCode string

const (
	ErrEmptyMessage   ErrCode = "EMPTY_MESSAGE"
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrNotParticipant ErrCode = "NOT_PARTICIPANT"
	ErrOwnMessage     ErrCode = "OWN_MESSAGE"
	ErrItemNotFound   ErrCode = "ITEM_NOT_FOUND"
	ErrSameUser       ErrCode = "SAME_USER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// SenderSystem marks a message authored by the platform itself.
const SenderSystem int64 = 0

type Service interface {
	// Start finds or creates the room between callerID and otherID for the
	// item. The item owner is the seller; the other party is the buyer,
	// whichever side initiated.
	Start(ctx context.Context, callerID, otherID, itemID int64) (*model.ChatRoom, error)

	// FindOrCreate is the registry primitive: exactly one room per
	// (unordered pair, item), at most one winner under concurrent calls.
	FindOrCreate(ctx context.Context, buyerID, sellerID, itemID int64) (*model.ChatRoom, error)

	Rooms(ctx context.Context, userID int64) ([]model.ChatRoom, error)
	RoomByBuyerItem(ctx context.Context, buyerID, itemID int64) (*model.ChatRoom, error)

	Send(ctx context.Context, senderID, roomID int64, text string) (*model.Message, error)
	SendSystem(ctx context.Context, roomID int64, text string) (*model.Message, error)
	SendPaymentEvent(ctx context.Context, roomID int64, text string, amount int64) (*model.Message, error)
	HasSystemMessage(ctx context.Context, roomID int64) (bool, error)

	Messages(ctx context.Context, userID, roomID int64) ([]model.Message, error)
	MarkRead(ctx context.Context, readerID, roomID, messageID int64) error
	MarkRoomRead(ctx context.Context, readerID, roomID int64) (int64, error)

	// AddParticipants is a privileged repair tool, not a public API action.
	AddParticipants(ctx context.Context, roomID int64, userIDs []int64) error
}

// Notifier is the fire-and-forget push side effect of a successful send.
// Delivery failure never fails the send.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, body string)
}

type service struct {
	r  chatrepo.Repo
	ir itemrepo.Repo
	n  Notifier
}

func New(r chatrepo.Repo, ir itemrepo.Repo, n Notifier) Service {
	return &service{r: r, ir: ir, n: n}
}

func (s *service) Start(ctx context.Context, callerID, otherID, itemID int64) (*model.ChatRoom, error) {
	if callerID == otherID {
		return nil, makeErr(ErrSameUser)
	}
	ownerID, err := s.ir.OwnerOf(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}

	buyerID, sellerID := callerID, otherID
	if callerID == ownerID {
		buyerID, sellerID = otherID, callerID
	}
	return s.FindOrCreate(ctx, buyerID, sellerID, itemID)
}

func (s *service) FindOrCreate(ctx context.Context, buyerID, sellerID, itemID int64) (*model.ChatRoom, error) {
	room, err := s.r.FindRoom(ctx, buyerID, sellerID, itemID)
	if err == nil {
		// repair-on-read: older rows may predate mandatory buyer roles
		if room.BuyerID == 0 {
			if err := s.r.BackfillBuyer(ctx, room.ID, buyerID); err != nil {
				return nil, err
			}
			room.BuyerID = buyerID
		}
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	room = &model.ChatRoom{
		RentalItemID: itemID,
		BuyerID:      buyerID,
		SellerID:     sellerID,
	}
	ok, err := s.r.CreateRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if ok {
		return room, nil
	}
	// lost the creation race; the winner's room is the room
	return s.r.FindRoom(ctx, buyerID, sellerID, itemID)
}

func (s *service) Rooms(ctx context.Context, userID int64) ([]model.ChatRoom, error) {
	return s.r.ListRooms(ctx, userID)
}

func (s *service) RoomByBuyerItem(ctx context.Context, buyerID, itemID int64) (*model.ChatRoom, error) {
	room, err := s.r.FindRoomByBuyerItem(ctx, buyerID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return room, nil
}

func (s *service) Send(ctx context.Context, senderID, roomID int64, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, makeErr(ErrEmptyMessage)
	}
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, makeErr(ErrNotParticipant)
	}
	msg, err := s.append(ctx, &model.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Type:     model.MessageText,
		Text:     text,
	})
	if err != nil {
		return nil, err
	}
	if s.n != nil {
		s.n.Notify(ctx, room.Other(senderID), "New message", text)
	}
	return msg, nil
}

func (s *service) SendSystem(ctx context.Context, roomID int64, text string) (*model.Message, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.append(ctx, &model.Message{
		RoomID:   roomID,
		SenderID: SenderSystem,
		Type:     model.MessageSystem,
		Text:     text,
	})
}

func (s *service) SendPaymentEvent(ctx context.Context, roomID int64, text string, amount int64) (*model.Message, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.append(ctx, &model.Message{
		RoomID:   roomID,
		SenderID: SenderSystem,
		Type:     model.MessagePaymentEvent,
		Text:     text,
		Amount:   &amount,
	})
}

func (s *service) HasSystemMessage(ctx context.Context, roomID int64) (bool, error) {
	return s.r.HasSystemMessage(ctx, roomID)
}

func (s *service) append(ctx context.Context, m *model.Message) (*model.Message, error) {
	if err := s.r.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Messages(ctx context.Context, userID, roomID int64) ([]model.Message, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, makeErr(ErrNotParticipant)
	}
	msgs, err := s.r.ListMessages(ctx, roomID)
	if err != nil {
		return nil, err
	}
	SortMessages(msgs)
	return msgs, nil
}

// SortMessages enforces the room's total order: ascending sent_at with the
// insertion id breaking same-timestamp ties. The store already orders rows
// this way; sorting again keeps the guarantee independent of the backend.
func SortMessages(msgs []model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
}

func (s *service) MarkRead(ctx context.Context, readerID, roomID, messageID int64) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(readerID) {
		return makeErr(ErrNotParticipant)
	}
	msg, err := s.r.GetMessage(ctx, roomID, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if msg.SenderID == readerID {
		return makeErr(ErrOwnMessage)
	}
	// marking an already-read message is a no-op, never an error
	return s.r.MarkRead(ctx, roomID, messageID)
}

func (s *service) MarkRoomRead(ctx context.Context, readerID, roomID int64) (int64, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if !room.HasParticipant(readerID) {
		return 0, makeErr(ErrNotParticipant)
	}
	return s.r.MarkRoomRead(ctx, roomID, readerID)
}

func (s *service) AddParticipants(ctx context.Context, roomID int64, userIDs []int64) error {
	if err := s.r.MergeParticipants(ctx, roomID, userIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return fmt.Errorf("merge participants: %w", err)
	}
	return nil
}

func (s *service) getRoom(ctx context.Context, roomID int64) (*model.ChatRoom, error) {
	room, err := s.r.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return room, nil
}
