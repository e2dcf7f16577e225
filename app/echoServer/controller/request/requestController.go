package request

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/jwtx"
	"github.com/ParkSiYeol3/LastDance-sub000/model"
	coordinatorsvc "github.com/ParkSiYeol3/LastDance-sub000/service/coordinator"
	requestsvc "github.com/ParkSiYeol3/LastDance-sub000/service/request"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc   requestsvc.Service
	Coord coordinatorsvc.Service
	V     *validator.Validate
	Log   *slog.Logger
}

// POST /v1/requests
// @Summary Submit a rental request for an item
// @Success 201 {object} map[string]any
// @Failure 400,404,409
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitRequestReq
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

	out, err := h.Svc.Submit(c.Request().Context(), uid, req.ItemID)
	if err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrDuplicateRequest:
			return c.JSON(http.StatusConflict, echo.Map{"message": "request already pending"})
		case requestsvc.ErrSelfRental:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot rent your own item"})
		case requestsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		default:
			h.Log.Error("request submit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": out})
}

// POST /v1/requests/:id/decision
// @Summary Accept or reject a pending request (owner only)
func (h *Controller) Decide(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req DecideReq
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

	out, err := h.Svc.Decide(c.Request().Context(), uid, id, requestsvc.Decision(req.Decision))
	if err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case requestsvc.ErrInvalidTransition:
			return c.JSON(http.StatusConflict, echo.Map{"message": "request already decided"})
		case requestsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		default:
			h.Log.Error("request decide", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	if out.Status == model.RequestAccepted {
		// the room is find-or-create, so a failed workflow here heals on
		// the next chat open; the accept itself stands
		if err := h.Coord.OnRequestAccepted(c.Request().Context(), out); err != nil {
			h.Log.Error("accept workflow", "request_id", out.ID, "err", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"request": out})
}

// POST /v1/requests/:id/confirm
// @Summary Confirm handoff of an accepted request; idempotent
func (h *Controller) Confirm(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Confirm(c.Request().Context(), uid, id); err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case requestsvc.ErrInvalidTransition:
			return c.JSON(http.StatusConflict, echo.Map{"message": "request not accepted"})
		case requestsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		default:
			h.Log.Error("request confirm", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "confirmed"})
}

// GET /v1/requests/my
func (h *Controller) Mine(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("request history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
