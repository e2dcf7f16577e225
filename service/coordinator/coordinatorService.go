package coordinatorsvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	chatsvc "github.com/ParkSiYeol3/LastDance-sub000/service/chat"
	notificationsvc "github.com/ParkSiYeol3/LastDance-sub000/service/notification"
)

// Service stitches the rental workflow together: request acceptance
// materializes the chat room, deposit transitions land in the transcript as
// payment events, and each step pushes a notification. The coordinator holds
// no state of its own; re-running after a partial failure is safe because
// room creation is find-or-create, the acceptance system message is guarded
// by an existence check, and notifications are fire-and-forget. The deposit
// hooks must be invoked only when the ledger row actually transitioned (the
// payment service reports this); each transition happens at most once, which
// is what keeps payment events from duplicating in the transcript.
type Service interface {
	OnRequestAccepted(ctx context.Context, req *model.RentalRequest) error
	OnDepositSucceeded(ctx context.Context, p *model.DepositPayment) error
	OnDepositRefunded(ctx context.Context, p *model.DepositPayment) error
}

type service struct {
	chat chatsvc.Service
	n    notificationsvc.Service
	log  *slog.Logger
}

func New(chat chatsvc.Service, n notificationsvc.Service, log *slog.Logger) Service {
	return &service{chat: chat, n: n, log: log}
}

func (s *service) OnRequestAccepted(ctx context.Context, req *model.RentalRequest) error {
	room, err := s.chat.FindOrCreate(ctx, req.RequesterID, req.OwnerID, req.ItemID)
	if err != nil {
		return fmt.Errorf("materialize room: %w", err)
	}

	posted, err := s.chat.HasSystemMessage(ctx, room.ID)
	if err != nil {
		return err
	}
	if !posted {
		if _, err := s.chat.SendSystem(ctx, room.ID, "Rental request accepted. Arrange the handoff and deposit here."); err != nil {
			return fmt.Errorf("post system message: %w", err)
		}
	}

	s.n.Notify(ctx, req.RequesterID, "Request accepted", "Your rental request was accepted. Open the chat to continue.")
	s.log.Info("request accepted workflow done", "request_id", req.ID, "room_id", room.ID)
	return nil
}

func (s *service) OnDepositSucceeded(ctx context.Context, p *model.DepositPayment) error {
	room, err := s.chat.RoomByBuyerItem(ctx, p.UserID, p.RentalItemID)
	if err != nil {
		if chatsvc.Code(err) == chatsvc.ErrNotFound {
			// no chat yet for this deposit; nothing to record
			s.log.Info("deposit succeeded without a room", "user_id", p.UserID, "item_id", p.RentalItemID)
			return nil
		}
		return err
	}

	if _, err := s.chat.SendPaymentEvent(ctx, room.ID, "Deposit paid.", p.Amount); err != nil {
		return fmt.Errorf("post payment event: %w", err)
	}
	s.n.Notify(ctx, room.SellerID, "Deposit paid", "The borrower's deposit has been paid.")
	return nil
}

func (s *service) OnDepositRefunded(ctx context.Context, p *model.DepositPayment) error {
	room, err := s.chat.RoomByBuyerItem(ctx, p.UserID, p.RentalItemID)
	if err != nil {
		if chatsvc.Code(err) == chatsvc.ErrNotFound {
			s.log.Info("deposit refunded without a room", "user_id", p.UserID, "item_id", p.RentalItemID)
			return nil
		}
		return err
	}

	if _, err := s.chat.SendPaymentEvent(ctx, room.ID, "Deposit refunded.", p.Amount); err != nil {
		return fmt.Errorf("post payment event: %w", err)
	}
	s.n.Notify(ctx, p.UserID, "Deposit refunded", "Your deposit has been returned.")
	return nil
}
