package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/pratijat22/LetsEarn/internal/config"
	"github.com/pratijat22/LetsEarn/internal/handler"
	appMiddleware "github.com/pratijat22/LetsEarn/internal/middleware"
	"github.com/pratijat22/LetsEarn/internal/repository"
	"github.com/pratijat22/LetsEarn/internal/service"
	"github.com/pratijat22/LetsEarn/pkg/blob"
	"github.com/pratijat22/LetsEarn/pkg/payment"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("database connected & migrated")

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	// External collaborators
	gateway := payment.NewCashfreeClient(
		cfg.Cashfree.AppID,
		cfg.Cashfree.SecretKey,
		cfg.Cashfree.WebhookSecret,
		cfg.Cashfree.Mode,
	)
	blobStore := blob.NewHMACStore(cfg.DownloadBaseURL, cfg.DownloadSigningKey)

	// Services
	checkoutSvc := service.NewCheckoutService(orderRepo, tokenRepo, entitlementRepo, eventRepo, gateway)
	downloadSvc := service.NewDownloadService(tokenRepo, entitlementRepo, courseRepo, blobStore)
	authSvc, err := service.NewAuthService(cfg.JWTSecret, cfg.AdminEmails, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("auth error: %v", err)
	}

	// Handlers
	paymentHandler := handler.NewPaymentHandler(checkoutSvc)
	downloadHandler := handler.NewDownloadHandler(downloadSvc)
	courseHandler := handler.NewCourseHandler(courseRepo)
	adminHandler := handler.NewAdminHandler(authSvc, courseRepo, entitlementRepo, orderRepo, blobStore)
	healthHandler := handler.NewHealthHandler(db)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Public routes
	r.Get("/health", healthHandler.Check)
	r.Get("/api/course", courseHandler.Get)
	r.Post("/api/payments/webhook", paymentHandler.Webhook)
	r.Post("/api/payments/confirm", paymentHandler.Confirm)
	r.Get("/api/payments/order-status", paymentHandler.OrderStatus)

	// Checkout and download carry a stricter bucket
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.StrictRateLimiter())
		r.Post("/api/payments/create-order", paymentHandler.CreateOrder)
		r.Get("/download", downloadHandler.Resolve)
		r.Post("/api/admin/login", adminHandler.Login)
	})

	// Admin console
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.AdminAuth(authSvc))
		r.Post("/api/admin/upload-url", adminHandler.UploadURL)
		r.Get("/api/admin/course", adminHandler.GetCourse)
		r.Put("/api/admin/course", adminHandler.UpdateCourse)
		r.Post("/api/admin/grant", adminHandler.Grant)
		r.Get("/api/admin/orders", adminHandler.ListOrders)
	})

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("LetsEarn backend listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
