package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fuel-express-backend/internal/config"
	"fuel-express-backend/internal/models"
	"fuel-express-backend/internal/modules/address"
	"fuel-express-backend/internal/modules/catalog"
	"fuel-express-backend/internal/modules/identity"
	"fuel-express-backend/internal/modules/orders"
	"fuel-express-backend/internal/modules/payments"
	"fuel-express-backend/pkg/mailer"
	"fuel-express-backend/pkg/payment"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to create database pool: ", err)
	}
	defer dbpool.Close()
	if err := dbpool.Ping(ctx); err != nil {
		log.Fatal("Failed to reach database: ", err)
	}

	var notifier mailer.MailerInterface = mailer.LogMailer{}
	if cfg.MailSender != "" {
		ses, err := mailer.NewSESMailer(ctx, cfg.AWSRegion, cfg.MailSender)
		if err != nil {
			log.Fatal("Failed to initialize mailer: ", err)
		}
		notifier = ses
	}

	gateway := payment.NewStripeGateway(cfg.StripeAPIKey)

	deliveryFee, err := orders.NewFlatFee(cfg.DeliveryFee)
	if err != nil {
		log.Fatal("Invalid DELIVERY_FEE: ", err)
	}

	// Repositories
	identityRepo := identity.NewRepository(dbpool)
	catalogRepo := catalog.NewRepository(dbpool)
	addressRepo := address.NewRepository(dbpool)
	orderRepo := orders.NewRepository(dbpool)
	paymentRepo := payments.NewRepository(dbpool)

	// Services
	identitySvc := identity.NewService(identityRepo, notifier, cfg.JWTSecret)
	catalogSvc := catalog.NewService(catalogRepo)
	addressSvc := address.NewService(addressRepo)
	orderSvc := orders.NewService(orderRepo, catalogSvc, addressSvc, deliveryFee, cfg.OrderPrefix)
	paymentSvc := payments.NewService(paymentRepo, orderSvc, gateway, notifier)

	// Handlers
	identityHandler := identity.NewHandler(identitySvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	addressHandler := address.NewHandler(addressSvc)
	orderHandler := orders.NewHandler(orderSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	// Public routes
	e.POST("/api/auth/register", identityHandler.Register)
	e.POST("/api/auth/verify", identityHandler.Verify)
	e.POST("/api/auth/resend-otp", identityHandler.ResendOTP)
	e.POST("/api/auth/login", identityHandler.Login)
	e.GET("/api/fuels", catalogHandler.ListAvailable)
	e.GET("/api/fuels/:fuelId/price", catalogHandler.GetPrice)
	// The gateway posts here once a charge settles; it authenticates with the
	// transaction id, not a user session.
	e.POST("/api/payments/gateway/callback", paymentHandler.GatewayCallback)

	// Authenticated routes
	api := e.Group("/api", identity.JWT(cfg.JWTSecret))

	api.GET("/me", identityHandler.Me)

	api.POST("/addresses", addressHandler.Add)
	api.GET("/addresses", addressHandler.List)
	api.PUT("/addresses/:addressId", addressHandler.Update)
	api.DELETE("/addresses/:addressId", addressHandler.Delete)
	api.PATCH("/addresses/:addressId/default", addressHandler.SetDefault)

	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.ListMine)
	api.GET("/orders/number/:orderNumber", orderHandler.GetByNumber)
	api.GET("/orders/:orderId", orderHandler.GetDetails)
	api.GET("/orders/:orderId/tracking", orderHandler.Tracking)
	api.POST("/orders/:orderId/cancel", orderHandler.Cancel)
	api.GET("/dashboard", orderHandler.Dashboard)

	api.POST("/payments", paymentHandler.Initiate)
	api.POST("/payments/:orderId/confirm-cod", paymentHandler.ConfirmCOD)
	api.GET("/payments/order/:orderId", paymentHandler.GetForOrder)

	// Station owner routes
	owner := api.Group("/owner", identity.RequireRoles(models.RoleStationOwner, models.RoleAdmin))
	owner.GET("/fuels", catalogHandler.ListMine)
	owner.PATCH("/fuels/:fuelId", catalogHandler.Update)
	owner.GET("/orders", orderHandler.ListStationOrders)
	owner.PATCH("/orders/:orderId/status", orderHandler.UpdateStatus)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal("Server stopped: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal("Forced shutdown: ", err)
	}
}
