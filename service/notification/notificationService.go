package notificationsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	devicerepo "github.com/ParkSiYeol3/LastDance-sub000/repository/device"
	pushrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/push"
)

type ErrCode string

const (
	ErrNoDestination ErrCode = "NO_DESTINATION"
	ErrUpstream      ErrCode = "UPSTREAM_FAILURE"
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
	// Notify is fire-and-forget: a missing destination or a gateway error is
	// logged and swallowed so the triggering operation never fails on it.
	Notify(ctx context.Context, userID int64, title, body string)

	// Send is the direct entry point used by the admin surface; unlike
	// Notify it surfaces failures to the caller.
	Send(ctx context.Context, userID int64, title, body string) error

	RegisterToken(ctx context.Context, userID int64, token string) error
}

type service struct {
	devices devicerepo.Repo
	gateway pushrepo.Repo
	log     *slog.Logger
}

func New(devices devicerepo.Repo, gateway pushrepo.Repo, log *slog.Logger) Service {
	return &service{devices: devices, gateway: gateway, log: log}
}

func (s *service) Notify(ctx context.Context, userID int64, title, body string) {
	if err := s.Send(ctx, userID, title, body); err != nil {
		if Code(err) == ErrNoDestination {
			s.log.Debug("push skipped, no destination", "user_id", userID)
			return
		}
		s.log.Warn("push delivery failed", "user_id", userID, "err", err)
	}
}

func (s *service) Send(ctx context.Context, userID int64, title, body string) error {
	token, err := s.devices.TokenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNoDestination)
		}
		return err
	}
	if err := s.gateway.Send(token, title, body); err != nil {
		return errors.Join(makeErr(ErrUpstream), err)
	}
	return nil
}

func (s *service) RegisterToken(ctx context.Context, userID int64, token string) error {
	return s.devices.UpsertToken(ctx, userID, token)
}
