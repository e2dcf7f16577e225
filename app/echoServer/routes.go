package echoServer

import (
	"net/http"

	authctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/auth"
	chatctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/chat"
	itemctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/item"
	notificationctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/notification"
	paymentctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/payment"
	requestctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/request"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth         *authctrl.Controller
	Item         *itemctrl.Controller
	Request      *requestctrl.Controller
	Chat         *chatctrl.Controller
	Payment      *paymentctrl.Controller
	Notification *notificationctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj := ctx.Get("user")
			if tokenObj == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			tok, ok := tokenObj.(*jwt.Token)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			return next(ctx)
		}
	})

	// Items
	auth.POST("/items", c.Item.Create)
	auth.GET("/items", c.Item.List)
	auth.GET("/items/:id", c.Item.Detail)

	// Rental requests
	auth.POST("/requests", c.Request.Submit)
	auth.POST("/requests/:id/decision", c.Request.Decide)
	auth.POST("/requests/:id/confirm", c.Request.Confirm)
	auth.GET("/requests/my", c.Request.Mine)

	// Chat
	auth.POST("/chats", c.Chat.Start)
	auth.GET("/chats", c.Chat.Rooms)
	auth.GET("/chats/:id/messages", c.Chat.Messages)
	auth.POST("/chats/:id/messages", c.Chat.Send)
	auth.POST("/chats/:id/messages/:messageId/read", c.Chat.MarkRead)
	auth.POST("/chats/:id/read", c.Chat.MarkRoomRead)
	auth.POST("/chats/participants", c.Chat.AddParticipants)

	// Deposit payments
	auth.POST("/payments/intent", c.Payment.CreateIntent)
	auth.POST("/payments/confirm", c.Payment.Confirm)
	auth.POST("/payments/refund", c.Payment.Refund)
	auth.POST("/payments/auto-refund", c.Payment.AutoRefund)
	auth.GET("/payments/status", c.Payment.Status)
	auth.GET("/payments/my", c.Payment.Mine)

	// Notifications
	auth.POST("/notifications/token", c.Notification.RegisterToken)
	auth.POST("/notifications/send", c.Notification.Send)
}
