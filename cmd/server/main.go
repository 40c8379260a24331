package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/auth"
	"github.com/adolfofidel/afdevs-admin/internal/config"
	"github.com/adolfofidel/afdevs-admin/internal/handler"
	appMiddleware "github.com/adolfofidel/afdevs-admin/internal/middleware"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/adolfofidel/afdevs-admin/internal/service"
	"github.com/adolfofidel/afdevs-admin/pkg/azul"
	"github.com/adolfofidel/afdevs-admin/pkg/crypto"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func main() {
	// Load .env file if present (for local development)
	loadDotEnv()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	ctx := context.Background()

	// Initialize database
	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Database error: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("❌ Migration error: %v", err)
	}
	log.Println("✅ Database connected & migrated")

	// Initialize encryptor for DataVault tokens at rest
	enc, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("❌ Encryption error: %v", err)
	}

	// Identity provider token verification (JWKS)
	authProvider, err := auth.NewProvider(cfg.AuthIssuer)
	if err != nil {
		log.Fatalf("❌ Auth provider error: %v", err)
	}

	// Card gateway
	gateway := azul.New(cfg.Azul)
	log.Printf("✅ Azul gateway configured (%s)", cfg.Azul.Environment)

	// Repositories
	clientRepo := repository.NewClientRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)

	// Services
	subSvc := service.NewSubscriptionService(clientRepo, subRepo, challengeRepo, gateway, enc)
	billingSvc := service.NewBillingService(subRepo, gateway, enc)
	webhookSvc := service.NewWebhookService(subRepo, clientRepo)

	// Handlers
	healthHandler := handler.NewHealthHandler(db)
	clientHandler := handler.NewClientHandler(clientRepo)
	siteHandler := handler.NewSiteHandler(siteRepo)
	taskHandler := handler.NewTaskHandler(taskRepo)
	searchHandler := handler.NewSearchHandler(clientRepo, siteRepo)
	subHandler := handler.NewSubscriptionHandler(subSvc, subRepo, paymentRepo)
	billingHandler := handler.NewBillingHandler(billingSvc, cfg.CronSecret)
	webhookHandler := handler.NewWebhookHandler(webhookSvc, cfg.PayPalWebhookSecret)
	portalHandler := handler.NewPortalHandler(clientRepo, siteRepo)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Public routes (no auth)
	r.Get("/health", healthHandler.Check)
	r.Get("/api/plans", handler.Plans)
	r.Post("/api/webhooks/paypal", webhookHandler.HandlePayPal)
	// Batch billing, guarded by the cron secret instead of a user token
	r.Post("/api/billing/process-recurring", billingHandler.ProcessRecurring)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(authProvider))

		// Subscription checkout (card entry gets the strict limiter)
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.StrictRateLimiter())
			r.Post("/api/subscriptions", subHandler.Create)
			r.Post("/api/subscriptions/3ds/complete", subHandler.Complete3DS)
		})

		r.Get("/api/subscriptions/current", subHandler.GetCurrent)
		r.Get("/api/subscriptions/current/payments", subHandler.Payments)
		r.Delete("/api/subscriptions/current", subHandler.Cancel)

		// Client portal
		r.Get("/api/portal/me", portalHandler.Me)
		r.Get("/api/portal/sites", portalHandler.Sites)

		// Staff routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AdminOnly)

			r.Get("/api/search", searchHandler.Search)
			r.Get("/api/subscriptions", subHandler.List)

			r.Get("/api/clients", clientHandler.List)
			r.Post("/api/clients", clientHandler.Create)
			r.Get("/api/clients/{id}", clientHandler.GetByID)
			r.Put("/api/clients/{id}", clientHandler.Update)
			r.Delete("/api/clients/{id}", clientHandler.Delete)

			r.Get("/api/sites", siteHandler.List)
			r.Post("/api/sites", siteHandler.Create)
			r.Get("/api/sites/{id}", siteHandler.GetByID)
			r.Put("/api/sites/{id}", siteHandler.Update)
			r.Delete("/api/sites/{id}", siteHandler.Delete)

			r.Get("/api/tasks", taskHandler.List)
			r.Post("/api/tasks", taskHandler.Create)
			r.Get("/api/tasks/{id}", taskHandler.GetByID)
			r.Put("/api/tasks/{id}", taskHandler.Update)
			r.Delete("/api/tasks/{id}", taskHandler.Delete)
		})
	})

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("🛑 Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("🚀 AFDevs Admin listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("❌ Server error: %v", err)
	}
}

// loadDotEnv reads a .env file if it exists. Existing environment variables
// win over file values.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
