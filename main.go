// Package main rental marketplace API.
//
// @title           Clothing Rental API
// @version         1.0
// @description     Peer-to-peer clothing rental: requests, chat, deposits, notifications.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ParkSiYeol3/LastDance-sub000/app/echoServer"
	authctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/auth"
	chatctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/chat"
	itemctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/item"
	notificationctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/notification"
	paymentctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/payment"
	requestctrl "github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/controller/request"
	"github.com/ParkSiYeol3/LastDance-sub000/app/echoServer/validation"
	"github.com/ParkSiYeol3/LastDance-sub000/config"
	chatrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/chat"
	devicerepo "github.com/ParkSiYeol3/LastDance-sub000/repository/device"
	itemrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/item"
	paymentrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/payment"
	pushrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/push"
	requestrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/request"
	striperepo "github.com/ParkSiYeol3/LastDance-sub000/repository/stripe"
	userrepo "github.com/ParkSiYeol3/LastDance-sub000/repository/user"
	authsvc "github.com/ParkSiYeol3/LastDance-sub000/service/auth"
	chatsvc "github.com/ParkSiYeol3/LastDance-sub000/service/chat"
	coordinatorsvc "github.com/ParkSiYeol3/LastDance-sub000/service/coordinator"
	itemsvc "github.com/ParkSiYeol3/LastDance-sub000/service/item"
	notificationsvc "github.com/ParkSiYeol3/LastDance-sub000/service/notification"
	paymentsvc "github.com/ParkSiYeol3/LastDance-sub000/service/payment"
	requestsvc "github.com/ParkSiYeol3/LastDance-sub000/service/request"
	"github.com/ParkSiYeol3/LastDance-sub000/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	ir := itemrepo.New(db)
	rr := requestrepo.New(db)
	cr := chatrepo.New(db)
	pr := paymentrepo.New(db)
	dr := devicerepo.New(db)
	xr := striperepo.NewHTTP(cfg.StripeSecretKey)
	gr := pushrepo.NewHTTP(cfg.PushGatewayURL)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	is := itemsvc.New(ir)
	ns := notificationsvc.New(dr, gr, log)
	cs := chatsvc.New(cr, ir, ns)
	rs := requestsvc.New(rr, ir)
	ps := paymentsvc.New(pr, xr, ir)
	co := coordinatorsvc.New(cs, ns, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: is, V: v, Log: log}
	requestC := &requestctrl.Controller{Svc: rs, Coord: co, V: v, Log: log}
	chatC := &chatctrl.Controller{Svc: cs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Coord: co, V: v, Log: log}
	notificationC := &notificationctrl.Controller{Svc: ns, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Item:         itemC,
		Request:      requestC,
		Chat:         chatC,
		Payment:      paymentC,
		Notification: notificationC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
