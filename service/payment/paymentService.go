package paymentsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
	paymentrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/payment"
	striperepo "github.com/ParkSiYeol3/LastDance-sub000/repository/stripe"
)

type ErrCode string

const (
	ErrMissingField         ErrCode = "MISSING_FIELD"
	ErrNotFound             ErrCode = "NOT_FOUND"
	ErrNotSucceededUpstream ErrCode = "NOT_SUCCEEDED_UPSTREAM"
	ErrNotRefundable        ErrCode = "NOT_REFUNDABLE"
	ErrAlreadyRefunded      ErrCode = "ALREADY_REFUNDED"
	ErrForbidden            ErrCode = "FORBIDDEN"
	ErrUpstream             ErrCode = "UPSTREAM_FAILURE"
)

type codedError struct {
	code  ErrCode
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return string(e.code) + ": " + e.cause.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }
func makeErr(c ErrCode) error      { return codedError{code: c} }
func wrapErr(c ErrCode, cause error) error {
	return codedError{code: c, cause: cause}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const depositCurrency = "krw"

type IntentCreated struct {
	IntentID     string
	ClientSecret string
}

type Service interface {
	// CreateIntent opens a deposit hold with the processor and records a
	// CREATED row. Not idempotent at this layer: callers must debounce.
	CreateIntent(ctx context.Context, userID, itemID, amount int64) (*IntentCreated, error)

	// ConfirmSucceeded verifies with the processor that the intent actually
	// succeeded before mutating local state. Re-confirming an already
	// succeeded record returns success without re-mutating; the bool reports
	// whether this call performed the CREATED -> SUCCEEDED transition, so
	// callers fire follow-up side effects exactly once. A refunded record
	// never moves back: confirming it fails with ALREADY_REFUNDED.
	ConfirmSucceeded(ctx context.Context, intentID string) (*model.DepositPayment, bool, error)

	// ConfirmRefund refunds by explicit intent id and returns the updated
	// record with its refund reference. Only the payer or the item owner
	// may trigger it.
	ConfirmRefund(ctx context.Context, actorID int64, intentID string) (*model.DepositPayment, error)

	// AutoRefundByItem resolves the most recent deposit for (user, item)
	// and refunds it. Same entitlement rule as ConfirmRefund.
	AutoRefundByItem(ctx context.Context, actorID, userID, itemID int64) (*model.DepositPayment, error)

	// Status is a side-effect-free projection safe to poll; the most recent
	// record wins, PaymentNone when no record exists.
	Status(ctx context.Context, userID, itemID int64) (model.PaymentStatus, error)

	Mine(ctx context.Context, userID int64) ([]model.DepositPayment, error)
}

type service struct {
	r  paymentrepo.Repo
	x  striperepo.Repo
	ir itemrepo.Repo
}

func New(r paymentrepo.Repo, x striperepo.Repo, ir itemrepo.Repo) Service {
	return &service{r: r, x: x, ir: ir}
}

func (s *service) CreateIntent(ctx context.Context, userID, itemID, amount int64) (*IntentCreated, error) {
	if userID == 0 || itemID == 0 || amount <= 0 {
		return nil, makeErr(ErrMissingField)
	}

	intent, err := s.x.CreateIntent(striperepo.CreateIntentReq{
		Amount:       amount,
		Currency:     depositCurrency,
		UserID:       userID,
		RentalItemID: itemID,
	})
	if err != nil {
		return nil, wrapErr(ErrUpstream, err)
	}

	p := &model.DepositPayment{
		UserID:          userID,
		RentalItemID:    itemID,
		PaymentIntentID: intent.IntentID,
		Amount:          amount,
		Status:          model.PaymentCreated,
	}
	if err := s.r.Insert(ctx, p); err != nil {
		return nil, err
	}
	return &IntentCreated{IntentID: intent.IntentID, ClientSecret: intent.ClientSecret}, nil
}

func (s *service) ConfirmSucceeded(ctx context.Context, intentID string) (*model.DepositPayment, bool, error) {
	if intentID == "" {
		return nil, false, makeErr(ErrMissingField)
	}
	p, err := s.r.ByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, makeErr(ErrNotFound)
		}
		return nil, false, err
	}
	if p.Status == model.PaymentSucceeded {
		return p, false, nil
	}
	// a refunded intent still reports "succeeded" upstream, so the upstream
	// check alone cannot catch this; the ledger never moves backward
	if p.Status == model.PaymentRefunded {
		return nil, false, makeErr(ErrAlreadyRefunded)
	}

	// never trust a client-asserted success
	upstream, err := s.x.RetrieveIntent(intentID)
	if err != nil {
		return nil, false, wrapErr(ErrUpstream, err)
	}
	if upstream.Status != "succeeded" {
		return nil, false, makeErr(ErrNotSucceededUpstream)
	}

	ok, err := s.r.MarkSucceeded(ctx, p.ID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// the guarded update matched no row: re-read for the actual state
		cur, err := s.r.ByIntentID(ctx, intentID)
		if err != nil {
			return nil, false, err
		}
		if cur.Status == model.PaymentSucceeded {
			return cur, false, nil
		}
		return nil, false, makeErr(ErrAlreadyRefunded)
	}
	p.Status = model.PaymentSucceeded
	return p, true, nil
}

func (s *service) ConfirmRefund(ctx context.Context, actorID int64, intentID string) (*model.DepositPayment, error) {
	if intentID == "" {
		return nil, makeErr(ErrMissingField)
	}
	p, err := s.r.ByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if err := s.authorizeRefund(ctx, actorID, p); err != nil {
		return nil, err
	}
	return s.refund(ctx, p)
}

func (s *service) AutoRefundByItem(ctx context.Context, actorID, userID, itemID int64) (*model.DepositPayment, error) {
	if userID == 0 || itemID == 0 {
		return nil, makeErr(ErrMissingField)
	}
	p, err := s.r.LatestByUserItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if err := s.authorizeRefund(ctx, actorID, p); err != nil {
		return nil, err
	}
	return s.refund(ctx, p)
}

// authorizeRefund lets the payer or the item owner release a deposit.
func (s *service) authorizeRefund(ctx context.Context, actorID int64, p *model.DepositPayment) error {
	if actorID == p.UserID {
		return nil
	}
	ownerID, err := s.ir.OwnerOf(ctx, p.RentalItemID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if actorID == ownerID {
		return nil
	}
	return makeErr(ErrForbidden)
}

// refund requests the upstream refund first and records REFUNDED only after a
// confirmed response; failure surfaces instead of being written speculatively.
func (s *service) refund(ctx context.Context, p *model.DepositPayment) (*model.DepositPayment, error) {
	if p.Status != model.PaymentSucceeded {
		return nil, makeErr(ErrNotRefundable)
	}

	ref, err := s.x.CreateRefund(p.PaymentIntentID)
	if err != nil {
		return nil, wrapErr(ErrUpstream, err)
	}

	ok, err := s.r.MarkRefunded(ctx, p.ID, ref.RefundID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// a concurrent refund already recorded the transition
		return nil, makeErr(ErrNotRefundable)
	}
	p.Status = model.PaymentRefunded
	p.RefundID = &ref.RefundID
	return p, nil
}

func (s *service) Status(ctx context.Context, userID, itemID int64) (model.PaymentStatus, error) {
	p, err := s.r.LatestByUserItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PaymentNone, nil
		}
		return "", err
	}
	return p.Status, nil
}

func (s *service) Mine(ctx context.Context, userID int64) ([]model.DepositPayment, error) {
	return s.r.ListByUser(ctx, userID)
}
