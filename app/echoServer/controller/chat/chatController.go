package chat

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/jwtx"
	chatsvc "github.com/ParkSiYeol3/LastDance-sub000/service/chat"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc chatsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/chats
// @Summary Find or create the chat room for a counterparty and item
// @Success 200 {object} map[string]any
func (h *Controller) Start(c echo.Context) error {
	var req StartChatReq
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

	room, err := h.Svc.Start(c.Request().Context(), uid, req.OtherUserID, req.RentalItemID)
	if err != nil {
		switch chatsvc.Code(err) {
		case chatsvc.ErrSameUser:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot chat with yourself"})
		case chatsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		default:
			h.Log.Error("chat start", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":         room,
		"participants": room.Participants(),
	})
}

// GET /v1/chats
func (h *Controller) Rooms(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rooms, err := h.Svc.Rooms(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("chat rooms", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rooms})
}

// GET /v1/chats/:id/messages
func (h *Controller) Messages(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	msgs, err := h.Svc.Messages(c.Request().Context(), uid, roomID)
	if err != nil {
		switch chatsvc.Code(err) {
		case chatsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "room not found"})
		case chatsvc.ErrNotParticipant:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("chat messages", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": msgs})
}

// POST /v1/chats/:id/messages
func (h *Controller) Send(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SendMessageReq
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

	msg, err := h.Svc.Send(c.Request().Context(), uid, roomID, req.Text)
	if err != nil {
		switch chatsvc.Code(err) {
		case chatsvc.ErrEmptyMessage:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "message text is empty"})
		case chatsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "room not found"})
		case chatsvc.ErrNotParticipant:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("chat send", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// POST /v1/chats/:id/messages/:messageId/read
func (h *Controller) MarkRead(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil || messageID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid message id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.MarkRead(c.Request().Context(), uid, roomID, messageID); err != nil {
		switch chatsvc.Code(err) {
		case chatsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case chatsvc.ErrNotParticipant, chatsvc.ErrOwnMessage:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("mark read", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "read"})
}

// POST /v1/chats/:id/read
func (h *Controller) MarkRoomRead(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	n, err := h.Svc.MarkRoomRead(c.Request().Context(), uid, roomID)
	if err != nil {
		switch chatsvc.Code(err) {
		case chatsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "room not found"})
		case chatsvc.ErrNotParticipant:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("mark room read", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": n})
}

// POST /v1/chats/participants
// Administrative repair, not part of the public chat flow.
func (h *Controller) AddParticipants(c echo.Context) error {
	var req AddParticipantsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	if err := h.Svc.AddParticipants(c.Request().Context(), req.RoomID, req.Participants); err != nil {
		if chatsvc.Code(err) == chatsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "room not found"})
		}
		h.Log.Error("add participants", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "participants updated"})
}
