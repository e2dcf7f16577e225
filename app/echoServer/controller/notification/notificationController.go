package notification

import (
	"log/slog"
	"net/http"

	"github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/jwtx"
	notificationsvc "github.com/ParkSiYeol3/LastDance-sub000/service/notification"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc notificationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/notifications/token
func (h *Controller) RegisterToken(c echo.Context) error {
	var req RegisterTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.RegisterToken(c.Request().Context(), uid, req.Token); err != nil {
		h.Log.Error("register token", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "token registered"})
}

// POST /v1/notifications/send
// Direct send; unlike the workflow side effects this surfaces failures.
func (h *Controller) Send(c echo.Context) error {
	var req SendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	if err := h.Svc.Send(c.Request().Context(), req.UserID, req.Title, req.Body); err != nil {
		switch notificationsvc.Code(err) {
		case notificationsvc.ErrNoDestination:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user has no push destination"})
		case notificationsvc.ErrUpstream:
			h.Log.Error("push send upstream", "err", err)
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "push gateway error"})
		default:
			h.Log.Error("push send", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sent"})
}
