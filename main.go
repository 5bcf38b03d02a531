package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	log "github.com/sirupsen/logrus"

	"github.com/Turan141/payments-terminal/config"
	"github.com/Turan141/payments-terminal/internal/handlers"
	"github.com/Turan141/payments-terminal/internal/services"
	"github.com/Turan141/payments-terminal/internal/services/gateway"
	"github.com/Turan141/payments-terminal/internal/services/recognizer"
	"github.com/Turan141/payments-terminal/monitoring"
	"github.com/Turan141/payments-terminal/security"
	"github.com/Turan141/payments-terminal/utils"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg := config.LoadConfig()
	if cfg.Environment == "development" {
		log.SetLevel(log.DebugLevel)
	}

	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// External clients
	var gw services.Gateway
	if cfg.PaymentMode == services.ModeGateway {
		gw = gateway.NewClient(&gateway.ClientConfig{
			BaseURL: cfg.GatewayBaseURL,
			Token:   cfg.GatewayToken,
		})
	}
	rec := recognizer.NewClient(&recognizer.ClientConfig{
		BaseURL: cfg.RecognizerBaseURL,
		Token:   cfg.RecognizerToken,
		Model:   cfg.RecognizerModel,
	})

	// PubNub only carries settlement notifications in gateway mode.
	var pn *pubnub.PubNub
	if cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	paymentService := services.NewPaymentService(redisClient, gw, pn, cfg)
	sessionService := services.NewSessionService(redisClient, cfg)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, rec)
	receiptHandler := handlers.NewReceiptHandler(paymentService)

	if pn != nil {
		go paymentService.SubscribeSettlementNotifications()
	}

	e := echo.New()
	e.Use(middleware.Recover())
	if cfg.EnableMetrics {
		e.Use(monitoring.HTTPMiddleware())
	}

	limiter := security.NewRateLimiter(redisClient)
	e.Use(limiter.AbuseGuard())

	// Merchant sign-in
	e.POST("/api/auth/login", sessionHandler.Login)
	e.POST("/api/auth/logout", sessionHandler.Logout)

	// Merchant terminal (session required)
	terminal := e.Group("/api/terminal", sessionHandler.RequireSession)
	terminal.POST("/keys", paymentHandler.PressKey)
	terminal.GET("/amount", paymentHandler.GetAmount)
	terminal.DELETE("/amount", paymentHandler.ClearAmount)

	// Payments
	e.POST("/api/payment/intent", paymentHandler.CreateIntent, sessionHandler.RequireSession, limiter.PaymentRateLimit())
	e.GET("/api/payment/:paymentId", paymentHandler.GetIntent)
	e.GET("/api/payment/:paymentId/qr", paymentHandler.QRImage)
	e.POST("/api/payment/:paymentId/pay", paymentHandler.Pay, limiter.PaymentRateLimit())
	e.POST("/api/payment/:paymentId/wallet", paymentHandler.PayWallet, limiter.PaymentRateLimit())
	e.POST("/api/payment/:paymentId/confirm", paymentHandler.Confirm)

	// Card recognition
	e.POST("/api/card/recognize", paymentHandler.Recognize)

	// Receipt (payer-facing, no session)
	e.GET("/api/receipt", receiptHandler.Show)

	if cfg.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port": cfg.Port,
			"mode": cfg.PaymentMode,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
}
