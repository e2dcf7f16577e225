package itemsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ParkSiYeol3/LastDance-sub000/model"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
)

type ErrCode string

const (
	ErrBadInput ErrCode = "BAD_INPUT"
	ErrNotFound ErrCode = "NOT_FOUND"
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

type Service interface {
	Create(ctx context.Context, ownerID int64, name, category string, deposit int64) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)
}

type service struct{ r itemrepo.Repo }

func New(r itemrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, ownerID int64, name, category string, deposit int64) (*model.Item, error) {
	if name == "" || category == "" || deposit < 0 {
		return nil, makeErr(ErrBadInput)
	}
	it := &model.Item{
		OwnerID:       ownerID,
		Name:          name,
		Category:      category,
		DepositAmount: deposit,
	}
	if err := s.r.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) List(ctx context.Context) ([]model.Item, error) {
	return s.r.List(ctx)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return it, nil
}
