// service/payment/payment_service_test.go
package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
	paymentrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/payment"
	striperepo "github.com/ParkSiYeol3/LastDance-sub000/repository/stripe"
)

type mockPaymentRepo struct {
	insertFn           func(ctx context.Context, p *model.DepositPayment) error
	byIntentIDFn       func(ctx context.Context, intentID string) (*model.DepositPayment, error)
	latestByUserItemFn func(ctx context.Context, userID, itemID int64) (*model.DepositPayment, error)
	markSucceededFn    func(ctx context.Context, id int64) (bool, error)
	markRefundedFn     func(ctx context.Context, id int64, refundID string) (bool, error)
	listByUserFn       func(ctx context.Context, userID int64) ([]model.DepositPayment, error)
}

var _ paymentrepo.Repo = (*mockPaymentRepo)(nil)

func (m *mockPaymentRepo) Insert(ctx context.Context, p *model.DepositPayment) error {
	if m.insertFn == nil {
		p.ID = 1
		return nil
	}
	return m.insertFn(ctx, p)
}

func (m *mockPaymentRepo) ByIntentID(ctx context.Context, intentID string) (*model.DepositPayment, error) {
	if m.byIntentIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIntentIDFn(ctx, intentID)
}

func (m *mockPaymentRepo) LatestByUserItem(ctx context.Context, userID, itemID int64) (*model.DepositPayment, error) {
	if m.latestByUserItemFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.latestByUserItemFn(ctx, userID, itemID)
}

func (m *mockPaymentRepo) MarkSucceeded(ctx context.Context, id int64) (bool, error) {
	if m.markSucceededFn == nil {
		return true, nil
	}
	return m.markSucceededFn(ctx, id)
}

func (m *mockPaymentRepo) MarkRefunded(ctx context.Context, id int64, refundID string) (bool, error) {
	if m.markRefundedFn == nil {
		return true, nil
	}
	return m.markRefundedFn(ctx, id, refundID)
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID int64) ([]model.DepositPayment, error) {
	if m.listByUserFn == nil {
		return nil, nil
	}
	return m.listByUserFn(ctx, userID)
}

type mockStripe struct {
	createIntentFn   func(req striperepo.CreateIntentReq) (*striperepo.CreateIntentResp, error)
	retrieveIntentFn func(intentID string) (*striperepo.IntentStatus, error)
	createRefundFn   func(intentID string) (*striperepo.RefundResp, error)
}

var _ striperepo.Repo = (*mockStripe)(nil)

func (m *mockStripe) CreateIntent(req striperepo.CreateIntentReq) (*striperepo.CreateIntentResp, error) {
	if m.createIntentFn == nil {
		return &striperepo.CreateIntentResp{IntentID: "pi_test", ClientSecret: "pi_test_secret"}, nil
	}
	return m.createIntentFn(req)
}

func (m *mockStripe) RetrieveIntent(intentID string) (*striperepo.IntentStatus, error) {
	if m.retrieveIntentFn == nil {
		return &striperepo.IntentStatus{IntentID: intentID, Status: "succeeded"}, nil
	}
	return m.retrieveIntentFn(intentID)
}

func (m *mockStripe) CreateRefund(intentID string) (*striperepo.RefundResp, error) {
	if m.createRefundFn == nil {
		return &striperepo.RefundResp{RefundID: "re_test"}, nil
	}
	return m.createRefundFn(intentID)
}

type mockItemRepo struct {
	ownerOfFn func(ctx context.Context, itemID int64) (int64, error)
}

var _ itemrepo.Repo = (*mockItemRepo)(nil)

func (m *mockItemRepo) Create(ctx context.Context, it *model.Item) error  { return nil }
func (m *mockItemRepo) List(ctx context.Context) ([]model.Item, error)    { return nil, nil }
func (m *mockItemRepo) Detail(ctx context.Context, id int64) (*model.Item, error) {
	return nil, sql.ErrNoRows
}
func (m *mockItemRepo) OwnerOf(ctx context.Context, itemID int64) (int64, error) {
	if m.ownerOfFn == nil {
		return 0, sql.ErrNoRows
	}
	return m.ownerOfFn(ctx, itemID)
}

func ownerOf(ownerID int64) *mockItemRepo {
	return &mockItemRepo{
		ownerOfFn: func(ctx context.Context, itemID int64) (int64, error) { return ownerID, nil },
	}
}

func succeeded() *model.DepositPayment {
	return &model.DepositPayment{
		ID: 1, UserID: 10, RentalItemID: 5,
		PaymentIntentID: "pi_1", Amount: 50000,
		Status: model.PaymentSucceeded,
	}
}

// --- tests ---

func TestCreateIntent_Success(t *testing.T) {
	var inserted *model.DepositPayment
	r := &mockPaymentRepo{
		insertFn: func(ctx context.Context, p *model.DepositPayment) error {
			p.ID = 1
			inserted = p
			return nil
		},
	}
	x := &mockStripe{
		createIntentFn: func(req striperepo.CreateIntentReq) (*striperepo.CreateIntentResp, error) {
			require.Equal(t, int64(50000), req.Amount)
			require.Equal(t, "krw", req.Currency)
			return &striperepo.CreateIntentResp{IntentID: "pi_1", ClientSecret: "pi_1_secret"}, nil
		},
	}
	svc := New(r, x, ownerOf(20))

	out, err := svc.CreateIntent(context.Background(), 10, 5, 50000)
	require.NoError(t, err)
	require.Equal(t, "pi_1", out.IntentID)
	require.Equal(t, "pi_1_secret", out.ClientSecret)
	require.Equal(t, model.PaymentCreated, inserted.Status)
}

func TestCreateIntent_MissingFields(t *testing.T) {
	svc := New(&mockPaymentRepo{}, &mockStripe{}, ownerOf(20))

	for _, tc := range []struct{ userID, itemID, amount int64 }{
		{0, 5, 50000},
		{10, 0, 50000},
		{10, 5, 0},
		{10, 5, -1},
	} {
		_, err := svc.CreateIntent(context.Background(), tc.userID, tc.itemID, tc.amount)
		require.Error(t, err)
		require.Equal(t, ErrMissingField, Code(err))
	}
}

func TestCreateIntent_UpstreamFailureNoLocalWrite(t *testing.T) {
	boom := errors.New("stripe 500")
	r := &mockPaymentRepo{
		insertFn: func(ctx context.Context, p *model.DepositPayment) error {
			t.Fatal("no local row may be written when the processor call fails")
			return nil
		},
	}
	x := &mockStripe{
		createIntentFn: func(req striperepo.CreateIntentReq) (*striperepo.CreateIntentResp, error) {
			return nil, boom
		},
	}
	svc := New(r, x, ownerOf(20))

	_, err := svc.CreateIntent(context.Background(), 10, 5, 50000)
	require.Error(t, err)
	require.Equal(t, ErrUpstream, Code(err))
	require.ErrorIs(t, err, boom)
}

func TestConfirmSucceeded_VerifiesUpstream(t *testing.T) {
	created := succeeded()
	created.Status = model.PaymentCreated
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return created, nil
		},
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	p, transitioned, err := svc.ConfirmSucceeded(context.Background(), "pi_1")
	require.NoError(t, err)
	require.True(t, transitioned)
	require.Equal(t, model.PaymentSucceeded, p.Status)
}

func TestConfirmSucceeded_RejectsClientAssertedSuccess(t *testing.T) {
	created := succeeded()
	created.Status = model.PaymentCreated
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return created, nil
		},
		markSucceededFn: func(ctx context.Context, id int64) (bool, error) {
			t.Fatal("must not record success the processor does not confirm")
			return false, nil
		},
	}
	x := &mockStripe{
		retrieveIntentFn: func(intentID string) (*striperepo.IntentStatus, error) {
			return &striperepo.IntentStatus{IntentID: intentID, Status: "requires_payment_method"}, nil
		},
	}
	svc := New(r, x, ownerOf(20))

	_, _, err := svc.ConfirmSucceeded(context.Background(), "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrNotSucceededUpstream, Code(err))
}

func TestConfirmSucceeded_Idempotent(t *testing.T) {
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return succeeded(), nil
		},
	}
	x := &mockStripe{
		retrieveIntentFn: func(intentID string) (*striperepo.IntentStatus, error) {
			t.Fatal("re-confirming an already succeeded record must not hit the processor")
			return nil, nil
		},
	}
	svc := New(r, x, ownerOf(20))

	// a replayed confirm succeeds but reports no transition, so the caller
	// fires the downstream workflow at most once
	p, transitioned, err := svc.ConfirmSucceeded(context.Background(), "pi_1")
	require.NoError(t, err)
	require.False(t, transitioned)
	require.Equal(t, model.PaymentSucceeded, p.Status)
}

func TestConfirmSucceeded_AfterRefund(t *testing.T) {
	refunded := succeeded()
	refunded.Status = model.PaymentRefunded
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return refunded, nil
		},
		markSucceededFn: func(ctx context.Context, id int64) (bool, error) {
			t.Fatal("a refunded deposit must never move back to SUCCEEDED")
			return false, nil
		},
	}
	x := &mockStripe{
		retrieveIntentFn: func(intentID string) (*striperepo.IntentStatus, error) {
			// a refunded Stripe intent still reports succeeded, so the
			// upstream status must not even be consulted here
			t.Fatal("refunded record decided locally, not upstream")
			return nil, nil
		},
	}
	svc := New(r, x, ownerOf(20))

	_, _, err := svc.ConfirmSucceeded(context.Background(), "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrAlreadyRefunded, Code(err))
}

func TestConfirmSucceeded_ConcurrentConfirmLoser(t *testing.T) {
	// the read saw CREATED but another confirm won the guarded update
	reads := 0
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			reads++
			if reads == 1 {
				created := succeeded()
				created.Status = model.PaymentCreated
				return created, nil
			}
			return succeeded(), nil
		},
		markSucceededFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	p, transitioned, err := svc.ConfirmSucceeded(context.Background(), "pi_1")
	require.NoError(t, err)
	require.False(t, transitioned)
	require.Equal(t, model.PaymentSucceeded, p.Status)
	require.Equal(t, 2, reads)
}

func TestConfirmSucceeded_RefundRace(t *testing.T) {
	// between the read and the guarded update the deposit was refunded
	reads := 0
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			reads++
			if reads == 1 {
				created := succeeded()
				created.Status = model.PaymentCreated
				return created, nil
			}
			refunded := succeeded()
			refunded.Status = model.PaymentRefunded
			return refunded, nil
		},
		markSucceededFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	_, _, err := svc.ConfirmSucceeded(context.Background(), "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrAlreadyRefunded, Code(err))
}

func TestConfirmSucceeded_NotFound(t *testing.T) {
	svc := New(&mockPaymentRepo{}, &mockStripe{}, ownerOf(20))

	_, _, err := svc.ConfirmSucceeded(context.Background(), "pi_unknown")
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestRefund_BeforeSucceeded(t *testing.T) {
	created := succeeded()
	created.Status = model.PaymentCreated
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return created, nil
		},
	}
	x := &mockStripe{
		createRefundFn: func(intentID string) (*striperepo.RefundResp, error) {
			t.Fatal("a deposit that never succeeded must not be refunded upstream")
			return nil, nil
		},
	}
	svc := New(r, x, ownerOf(20))

	_, err := svc.ConfirmRefund(context.Background(), 10, "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrNotRefundable, Code(err))
}

func TestRefund_Success(t *testing.T) {
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return succeeded(), nil
		},
		markRefundedFn: func(ctx context.Context, id int64, refundID string) (bool, error) {
			require.Equal(t, "re_1", refundID)
			return true, nil
		},
	}
	x := &mockStripe{
		createRefundFn: func(intentID string) (*striperepo.RefundResp, error) {
			return &striperepo.RefundResp{RefundID: "re_1"}, nil
		},
	}
	svc := New(r, x, ownerOf(20))

	p, err := svc.ConfirmRefund(context.Background(), 10, "pi_1")
	require.NoError(t, err)
	require.Equal(t, model.PaymentRefunded, p.Status)
	require.NotNil(t, p.RefundID)
	require.Equal(t, "re_1", *p.RefundID)
}

func TestRefund_UpstreamFailureNoLocalWrite(t *testing.T) {
	boom := errors.New("stripe 500")
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return succeeded(), nil
		},
		markRefundedFn: func(ctx context.Context, id int64, refundID string) (bool, error) {
			t.Fatal("REFUNDED must not be written when the processor call fails")
			return false, nil
		},
	}
	x := &mockStripe{
		createRefundFn: func(intentID string) (*striperepo.RefundResp, error) { return nil, boom },
	}
	svc := New(r, x, ownerOf(20))

	_, err := svc.ConfirmRefund(context.Background(), 10, "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrUpstream, Code(err))
	require.ErrorIs(t, err, boom)
}

func TestRefund_DoubleRefund(t *testing.T) {
	refunded := succeeded()
	refunded.Status = model.PaymentRefunded
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return refunded, nil
		},
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	_, err := svc.ConfirmRefund(context.Background(), 10, "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrNotRefundable, Code(err))
}

func TestRefund_ConcurrentLoser(t *testing.T) {
	// the read saw SUCCEEDED but another refund won the conditional update
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return succeeded(), nil
		},
		markRefundedFn: func(ctx context.Context, id int64, refundID string) (bool, error) {
			return false, nil
		},
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	_, err := svc.ConfirmRefund(context.Background(), 10, "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrNotRefundable, Code(err))
}

func TestRefund_Entitlement(t *testing.T) {
	r := &mockPaymentRepo{
		byIntentIDFn: func(ctx context.Context, intentID string) (*model.DepositPayment, error) {
			return succeeded(), nil
		},
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	// payer and item owner may refund
	_, err := svc.ConfirmRefund(context.Background(), 10, "pi_1")
	require.NoError(t, err)
	_, err = svc.ConfirmRefund(context.Background(), 20, "pi_1")
	require.NoError(t, err)

	// anyone else may not
	_, err = svc.ConfirmRefund(context.Background(), 99, "pi_1")
	require.Error(t, err)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestAutoRefund_UsesLatestRecord(t *testing.T) {
	var askedUser, askedItem int64
	r := &mockPaymentRepo{
		latestByUserItemFn: func(ctx context.Context, userID, itemID int64) (*model.DepositPayment, error) {
			askedUser, askedItem = userID, itemID
			return succeeded(), nil
		},
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	p, err := svc.AutoRefundByItem(context.Background(), 20, 10, 5)
	require.NoError(t, err)
	require.Equal(t, model.PaymentRefunded, p.Status)
	require.Equal(t, int64(10), askedUser)
	require.Equal(t, int64(5), askedItem)
}

func TestAutoRefund_NoRecord(t *testing.T) {
	svc := New(&mockPaymentRepo{}, &mockStripe{}, ownerOf(20))

	_, err := svc.AutoRefundByItem(context.Background(), 10, 10, 5)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestStatus_MostRecentWins(t *testing.T) {
	r := &mockPaymentRepo{
		latestByUserItemFn: func(ctx context.Context, userID, itemID int64) (*model.DepositPayment, error) {
			return succeeded(), nil
		},
	}
	svc := New(r, &mockStripe{}, ownerOf(20))

	st, err := svc.Status(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Equal(t, model.PaymentSucceeded, st)
}

func TestStatus_NoRecordIsNone(t *testing.T) {
	svc := New(&mockPaymentRepo{}, &mockStripe{}, ownerOf(20))

	st, err := svc.Status(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Equal(t, model.PaymentNone, st)
}
