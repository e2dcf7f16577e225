package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/jwtx"
	coordinatorsvc "github.com/ParkSiYeol3/LastDance-sub000/service/coordinator"
	paymentsvc "github.com/ParkSiYeol3/LastDance-sub000/service/payment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc   paymentsvc.Service
	Coord coordinatorsvc.Service
	V     *validator.Validate
	Log   *slog.Logger
}

// POST /v1/payments/intent
// @Summary Open a deposit hold with the payment processor
// @Success 201 {object} map[string]any
func (h *Controller) CreateIntent(c echo.Context) error {
	var req CreateIntentReq
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

	out, err := h.Svc.CreateIntent(c.Request().Context(), uid, req.RentalItemID, req.Amount)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrMissingField:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing field"})
		case paymentsvc.ErrUpstream:
			h.Log.Error("create intent upstream", "err", err)
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment processor error"})
		default:
			h.Log.Error("create intent", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"payment_intent_id": out.IntentID,
		"client_secret":     out.ClientSecret,
	})
}

// POST /v1/payments/confirm
// @Summary Record a deposit as succeeded after verifying with the processor
func (h *Controller) Confirm(c echo.Context) error {
	var req ConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	p, transitioned, err := h.Svc.ConfirmSucceeded(c.Request().Context(), req.PaymentIntentID)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrMissingField:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing field"})
		case paymentsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case paymentsvc.ErrNotSucceededUpstream:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "payment has not succeeded yet"})
		case paymentsvc.ErrAlreadyRefunded:
			return c.JSON(http.StatusConflict, echo.Map{"message": "deposit already refunded"})
		case paymentsvc.ErrUpstream:
			h.Log.Error("confirm upstream", "err", err)
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment processor error"})
		default:
			h.Log.Error("confirm", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	// the workflow fires only on the actual transition; a replayed confirm
	// returns the same success without reposting the payment event
	if transitioned {
		if err := h.Coord.OnDepositSucceeded(c.Request().Context(), p); err != nil {
			h.Log.Error("deposit succeeded workflow", "intent_id", p.PaymentIntentID, "err", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": p.Status})
}

// POST /v1/payments/refund
// @Summary Refund a deposit by payment intent id
func (h *Controller) Refund(c echo.Context) error {
	var req RefundReq
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

	p, err := h.Svc.ConfirmRefund(c.Request().Context(), uid, req.PaymentIntentID)
	if err != nil {
		return h.refundError(c, err)
	}
	if err := h.Coord.OnDepositRefunded(c.Request().Context(), p); err != nil {
		h.Log.Error("deposit refunded workflow", "intent_id", p.PaymentIntentID, "err", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": p.Status, "refund_id": p.RefundID})
}

// POST /v1/payments/auto-refund
// @Summary Refund the most recent deposit for (user, item)
func (h *Controller) AutoRefund(c echo.Context) error {
	var req AutoRefundReq
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

	p, err := h.Svc.AutoRefundByItem(c.Request().Context(), uid, req.UserID, req.RentalItemID)
	if err != nil {
		return h.refundError(c, err)
	}
	if err := h.Coord.OnDepositRefunded(c.Request().Context(), p); err != nil {
		h.Log.Error("deposit refunded workflow", "intent_id", p.PaymentIntentID, "err", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": p.Status, "refund_id": p.RefundID})
}

func (h *Controller) refundError(c echo.Context, err error) error {
	switch paymentsvc.Code(err) {
	case paymentsvc.ErrMissingField:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing field"})
	case paymentsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
	case paymentsvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case paymentsvc.ErrNotRefundable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "deposit is not refundable"})
	case paymentsvc.ErrUpstream:
		h.Log.Error("refund upstream", "err", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment processor error"})
	default:
		h.Log.Error("refund", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// GET /v1/payments/status?user_id=&rental_item_id=
// Side-effect free; the chat UI polls this to decide Pay / Refund actions.
func (h *Controller) Status(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
	}
	itemID, err := strconv.ParseInt(c.QueryParam("rental_item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid rental_item_id"})
	}

	status, err := h.Svc.Status(c.Request().Context(), userID, itemID)
	if err != nil {
		h.Log.Error("payment status", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// GET /v1/payments/my
func (h *Controller) Mine(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("payment history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
