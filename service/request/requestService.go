package requestsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
	requestrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/request"
)

// errors used by controllers

type ErrCode string

const (
	ErrDuplicateRequest  ErrCode = "DUPLICATE_REQUEST"
	ErrSelfRental        ErrCode = "SELF_RENTAL"
	ErrNotOwner          ErrCode = "NOT_OWNER"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrItemNotFound      ErrCode = "ITEM_NOT_FOUND"
	ErrNotFound          ErrCode = "NOT_FOUND"
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

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

type Service interface {
	// Submit creates a PENDING request by requesterID for itemID. At most
	// one pending request may exist per (item, requester).
	Submit(ctx context.Context, requesterID, itemID int64) (*model.RentalRequest, error)

	// Decide accepts or rejects a pending request; only the item owner may
	// call it. The returned request carries the new status.
	Decide(ctx context.Context, actorID, requestID int64, d Decision) (*model.RentalRequest, error)

	// Confirm moves an accepted request to CONFIRMED after the handoff.
	// Either participant may call it; confirming twice is a no-op.
	Confirm(ctx context.Context, actorID, requestID int64) error

	// Mine lists requests where the user is requester or owner.
	Mine(ctx context.Context, userID int64) ([]model.RentalRequest, error)
}

type service struct {
	r  requestrepo.Repo
	ir itemrepo.Repo
}

func New(r requestrepo.Repo, ir itemrepo.Repo) Service {
	return &service{r: r, ir: ir}
}

func (s *service) Submit(ctx context.Context, requesterID, itemID int64) (*model.RentalRequest, error) {
	ownerID, err := s.ir.OwnerOf(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if ownerID == requesterID {
		return nil, makeErr(ErrSelfRental)
	}

	req := &model.RentalRequest{
		ItemID:      itemID,
		RequesterID: requesterID,
		OwnerID:     ownerID,
		Status:      model.RequestPending,
	}
	if err := s.r.Insert(ctx, req); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrDuplicateRequest)
		}
		return nil, err
	}
	return req, nil
}

func (s *service) Decide(ctx context.Context, actorID, requestID int64, d Decision) (*model.RentalRequest, error) {
	req, err := s.r.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if req.OwnerID != actorID {
		return nil, makeErr(ErrNotOwner)
	}
	if req.Status != model.RequestPending {
		return nil, makeErr(ErrInvalidTransition)
	}

	next := model.RequestRejected
	if d == DecisionAccept {
		next = model.RequestAccepted
	}
	ok, err := s.r.Decide(ctx, requestID, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		// a concurrent decide got there first
		return nil, makeErr(ErrInvalidTransition)
	}
	req.Status = next
	return req, nil
}

func (s *service) Confirm(ctx context.Context, actorID, requestID int64) error {
	req, err := s.r.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if actorID != req.RequesterID && actorID != req.OwnerID {
		return makeErr(ErrNotOwner)
	}

	ok, err := s.r.Confirm(ctx, requestID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// no row transitioned: re-read to tell already-confirmed (a no-op)
	// from a genuinely invalid state
	cur, err := s.r.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if cur.Status == model.RequestConfirmed {
		return nil
	}
	return makeErr(ErrInvalidTransition)
}

func (s *service) Mine(ctx context.Context, userID int64) ([]model.RentalRequest, error) {
	return s.r.ListByUser(ctx, userID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
