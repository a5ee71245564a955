package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"

	"github.com/will8688/sealog-cloud-webhook/internal/config"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/services"
	"github.com/will8688/sealog-cloud-webhook/internal/infrastructure/database"
	"github.com/will8688/sealog-cloud-webhook/internal/interfaces/http/handlers"
	"github.com/will8688/sealog-cloud-webhook/internal/interfaces/http/middleware"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	stripe.Key = cfg.Billing.StripeSecret
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := database.NewUserRepository(db)
	subscriptionRepo := database.NewSubscriptionRepository(db)

	gateway := services.NewStripeGateway()
	reconciler := services.NewReconcileService(gateway, userRepo, subscriptionRepo, logger)
	checkout := services.NewCheckoutService(gateway, userRepo, cfg.Server.BaseURL, logger)
	jwtService := services.NewJWTService(cfg.JWT.Secret, 24*time.Hour)

	webhookHandler := handlers.NewWebhookHandler(reconciler, cfg.Billing.WebhookSecret, logger)
	billingHandler := handlers.NewBillingHandler(checkout, subscriptionRepo, cfg.Billing.PriceIDs, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(logger))
	router.SetHTMLTemplate(handlers.PlansTemplate)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "Webhook service running",
			"service": "Sea Log Stripe Webhooks",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	router.POST("/webhook/stripe", webhookHandler.HandleStripeWebhook)

	router.GET("/success", billingHandler.HandleSuccess)
	router.GET("/cancel", billingHandler.HandleCancel)
	router.GET("/billing/plans", billingHandler.PlansPage)
	router.GET("/billing/subscribe", middleware.OptionalJWTAuth(jwtService), billingHandler.Subscribe)

	api := router.Group("/api/billing")
	api.GET("/prices", billingHandler.GetPrices)
	api.POST("/checkout", middleware.JWTAuth(jwtService), billingHandler.CreateCheckout)
	api.GET("/subscription", middleware.JWTAuth(jwtService), billingHandler.GetSubscription)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Billing service stopped")
}
