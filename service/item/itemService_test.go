// service/item/item_service_test.go
package itemsvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	itemsvc "github.com/ParkSiYeol3/LastDance-sub000/service/item"
)

type repoMock struct {
	createFn  func(ctx context.Context, it *model.Item) error
	listFn    func(ctx context.Context) ([]model.Item, error)
	detailFn  func(ctx context.Context, id int64) (*model.Item, error)
	ownerOfFn func(ctx context.Context, itemID int64) (int64, error)
}

func (m *repoMock) Create(ctx context.Context, it *model.Item) error {
	return m.createFn(ctx, it)
}
func (m *repoMock) List(ctx context.Context) ([]model.Item, error) { return m.listFn(ctx) }
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Item, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) OwnerOf(ctx context.Context, itemID int64) (int64, error) {
	return m.ownerOfFn(ctx, itemID)
}

func TestCreate_Validation(t *testing.T) {
	s := itemsvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), 1, "", "outer", 10000); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := s.Create(context.Background(), 1, "denim jacket", "", 10000); err == nil {
		t.Fatal("expected error for empty category")
	}
	if _, err := s.Create(context.Background(), 1, "denim jacket", "outer", -1); err == nil {
		t.Fatal("expected error for negative deposit")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, it *model.Item) error {
			if it.OwnerID != 1 || it.Name != "denim jacket" || it.DepositAmount != 50000 {
				return errors.New("bad args")
			}
			it.ID = 42
			return nil
		},
	}
	s := itemsvc.New(m)
	it, err := s.Create(context.Background(), 1, "denim jacket", "outer", 50000)
	if err != nil || it.ID != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", it.ID, err)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Item, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := itemsvc.New(m)
	if _, err := s.Detail(context.Background(), 99); itemsvc.Code(err) != itemsvc.ErrNotFound {
		t.Fatalf("got %v; want NOT_FOUND", err)
	}
}

func TestList_PassThrough(t *testing.T) {
	m := &repoMock{
		listFn: func(ctx context.Context) ([]model.Item, error) {
			return []model.Item{{ID: 1}, {ID: 2}}, nil
		},
	}
	s := itemsvc.New(m)
	items, err := s.List(context.Background())
	if err != nil || len(items) != 2 {
		t.Fatalf("got %d items err=%v; want 2 nil", len(items), err)
	}
}
