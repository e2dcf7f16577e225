// service/request/request_service_test.go
package requestsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
	requestrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/request"
)

type mockRequestRepo struct {
	insertFn     func(ctx context.Context, req *model.RentalRequest) error
	getFn        func(ctx context.Context, id int64) (*model.RentalRequest, error)
	decideFn     func(ctx context.Context, id int64, status model.RequestStatus) (bool, error)
	confirmFn    func(ctx context.Context, id int64) (bool, error)
	listByUserFn func(ctx context.Context, userID int64) ([]model.RentalRequest, error)
}

var _ requestrepo.Repo = (*mockRequestRepo)(nil)

func (m *mockRequestRepo) Insert(ctx context.Context, req *model.RentalRequest) error {
	if m.insertFn == nil {
		return nil
	}
	return m.insertFn(ctx, req)
}

func (m *mockRequestRepo) Get(ctx context.Context, id int64) (*model.RentalRequest, error) {
	if m.getFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.getFn(ctx, id)
}

func (m *mockRequestRepo) Decide(ctx context.Context, id int64, status model.RequestStatus) (bool, error) {
	if m.decideFn == nil {
		return true, nil
	}
	return m.decideFn(ctx, id, status)
}

func (m *mockRequestRepo) Confirm(ctx context.Context, id int64) (bool, error) {
	if m.confirmFn == nil {
		return true, nil
	}
	return m.confirmFn(ctx, id)
}

func (m *mockRequestRepo) ListByUser(ctx context.Context, userID int64) ([]model.RentalRequest, error) {
	if m.listByUserFn == nil {
		return nil, nil
	}
	return m.listByUserFn(ctx, userID)
}

type mockItemRepo struct {
	ownerOfFn func(ctx context.Context, itemID int64) (int64, error)
}

var _ itemrepo.Repo = (*mockItemRepo)(nil)

func (m *mockItemRepo) Create(ctx context.Context, it *model.Item) error      { return nil }
func (m *mockItemRepo) List(ctx context.Context) ([]model.Item, error)        { return nil, nil }
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

// --- tests ---

func TestSubmit_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRequestRepo{
		insertFn: func(ctx context.Context, req *model.RentalRequest) error {
			req.ID = 7
			return nil
		},
	}
	svc := New(m, ownerOf(20))

	req, err := svc.Submit(ctx, 10, 5)
	require.NoError(t, err)
	require.Equal(t, int64(7), req.ID)
	require.Equal(t, int64(10), req.RequesterID)
	require.Equal(t, int64(20), req.OwnerID)
	require.Equal(t, model.RequestPending, req.Status)
}

func TestSubmit_SelfRental(t *testing.T) {
	svc := New(&mockRequestRepo{}, ownerOf(10))

	_, err := svc.Submit(context.Background(), 10, 5)
	require.Error(t, err)
	require.Equal(t, ErrSelfRental, Code(err))
}

func TestSubmit_ItemNotFound(t *testing.T) {
	svc := New(&mockRequestRepo{}, &mockItemRepo{})

	_, err := svc.Submit(context.Background(), 10, 404)
	require.Error(t, err)
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestSubmit_DuplicatePending(t *testing.T) {
	m := &mockRequestRepo{
		insertFn: func(ctx context.Context, req *model.RentalRequest) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m, ownerOf(20))

	_, err := svc.Submit(context.Background(), 10, 5)
	require.Error(t, err)
	require.Equal(t, ErrDuplicateRequest, Code(err))
}

func TestSubmit_RepoError(t *testing.T) {
	boom := errors.New("db down")
	m := &mockRequestRepo{
		insertFn: func(ctx context.Context, req *model.RentalRequest) error { return boom },
	}
	svc := New(m, ownerOf(20))

	_, err := svc.Submit(context.Background(), 10, 5)
	require.ErrorIs(t, err, boom)
	require.Equal(t, ErrCode(""), Code(err))
}

func pendingReq() *model.RentalRequest {
	return &model.RentalRequest{ID: 1, ItemID: 5, RequesterID: 10, OwnerID: 20, Status: model.RequestPending}
}

func TestDecide_Accept(t *testing.T) {
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return pendingReq(), nil
		},
		decideFn: func(ctx context.Context, id int64, status model.RequestStatus) (bool, error) {
			require.Equal(t, model.RequestAccepted, status)
			return true, nil
		},
	}
	svc := New(m, ownerOf(20))

	out, err := svc.Decide(context.Background(), 20, 1, DecisionAccept)
	require.NoError(t, err)
	require.Equal(t, model.RequestAccepted, out.Status)
}

func TestDecide_Reject(t *testing.T) {
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return pendingReq(), nil
		},
	}
	svc := New(m, ownerOf(20))

	out, err := svc.Decide(context.Background(), 20, 1, DecisionReject)
	require.NoError(t, err)
	require.Equal(t, model.RequestRejected, out.Status)
}

func TestDecide_NotOwner(t *testing.T) {
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return pendingReq(), nil
		},
	}
	svc := New(m, ownerOf(20))

	// the requester cannot decide their own request
	_, err := svc.Decide(context.Background(), 10, 1, DecisionAccept)
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestDecide_AlreadyDecided(t *testing.T) {
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			req := pendingReq()
			req.Status = model.RequestRejected
			return req, nil
		},
	}
	svc := New(m, ownerOf(20))

	_, err := svc.Decide(context.Background(), 20, 1, DecisionAccept)
	require.Error(t, err)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestDecide_LostRace(t *testing.T) {
	// read saw PENDING but the conditional update matched no row
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return pendingReq(), nil
		},
		decideFn: func(ctx context.Context, id int64, status model.RequestStatus) (bool, error) {
			return false, nil
		},
	}
	svc := New(m, ownerOf(20))

	_, err := svc.Decide(context.Background(), 20, 1, DecisionAccept)
	require.Error(t, err)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestDecide_NotFound(t *testing.T) {
	svc := New(&mockRequestRepo{}, ownerOf(20))

	_, err := svc.Decide(context.Background(), 20, 404, DecisionAccept)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestConfirm_ByEitherParty(t *testing.T) {
	accepted := pendingReq()
	accepted.Status = model.RequestAccepted
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return accepted, nil
		},
	}
	svc := New(m, ownerOf(20))

	require.NoError(t, svc.Confirm(context.Background(), 10, 1))
	require.NoError(t, svc.Confirm(context.Background(), 20, 1))
}

func TestConfirm_Stranger(t *testing.T) {
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return pendingReq(), nil
		},
	}
	svc := New(m, ownerOf(20))

	err := svc.Confirm(context.Background(), 99, 1)
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestConfirm_Idempotent(t *testing.T) {
	// update matches no row, re-read shows CONFIRMED: treated as a no-op
	confirmed := pendingReq()
	confirmed.Status = model.RequestConfirmed
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return confirmed, nil
		},
		confirmFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
	}
	svc := New(m, ownerOf(20))

	require.NoError(t, svc.Confirm(context.Background(), 10, 1))
}

func TestConfirm_FromPending(t *testing.T) {
	m := &mockRequestRepo{
		getFn: func(ctx context.Context, id int64) (*model.RentalRequest, error) {
			return pendingReq(), nil
		},
		confirmFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
	}
	svc := New(m, ownerOf(20))

	err := svc.Confirm(context.Background(), 10, 1)
	require.Error(t, err)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestMine_PassThrough(t *testing.T) {
	m := &mockRequestRepo{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.RentalRequest, error) {
			require.Equal(t, int64(10), userID)
			return []model.RentalRequest{*pendingReq()}, nil
		},
	}
	svc := New(m, ownerOf(20))

	out, err := svc.Mine(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
}
