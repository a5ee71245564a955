package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/repositories"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/services"
	"github.com/will8688/sealog-cloud-webhook/internal/interfaces/http/middleware"
)

type BillingHandler struct {
	billing  services.BillingService
	subs     repositories.SubscriptionRepository
	priceIDs []string
	logger   *slog.Logger
}

func NewBillingHandler(billing services.BillingService, subs repositories.SubscriptionRepository, priceIDs []string, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing:  billing,
		subs:     subs,
		priceIDs: priceIDs,
		logger:   logger,
	}
}

// GetPrices returns display details for the requested price IDs, defaulting
// to the configured pricing-page set.
func (h *BillingHandler) GetPrices(c *gin.Context) {
	priceIDs := c.QueryArray("price_id")
	if len(priceIDs) == 0 {
		priceIDs = h.priceIDs
	}
	if len(priceIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_id is required"})
		return
	}

	details := make([]*models.PriceDetails, 0, len(priceIDs))
	for _, priceID := range priceIDs {
		d, err := h.billing.GetPriceDetails(c.Request.Context(), priceID)
		if err != nil {
			h.logger.Error("failed to fetch price details", "error", err, "price_id", priceID)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch price details"})
			return
		}
		details = append(details, d)
	}

	c.JSON(http.StatusOK, gin.H{"prices": details})
}

// CreateCheckout creates a hosted checkout session for the authenticated user
// and returns its URL.
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req struct {
		PriceID    string `json:"price_id" binding:"required"`
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_id is required"})
		return
	}

	url, sessionID, err := h.billing.CreateCheckoutSession(c.Request.Context(), services.CheckoutRequest{
		PriceID:    req.PriceID,
		UserID:     middleware.UserID(c),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		h.logger.Error("failed to create checkout session", "error", err, "price_id", req.PriceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": url,
		"session_id":   sessionID,
	})
}

// Subscribe is the pricing-page button target: it creates a checkout session
// and sends the browser straight to Stripe's hosted page.
func (h *BillingHandler) Subscribe(c *gin.Context) {
	priceID := c.Query("price_id")
	if priceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_id is required"})
		return
	}

	url, _, err := h.billing.CreateCheckoutSession(c.Request.Context(), services.CheckoutRequest{
		PriceID: priceID,
		UserID:  middleware.UserID(c),
	})
	if err != nil {
		h.logger.Error("failed to create checkout session", "error", err, "price_id", priceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.Redirect(http.StatusSeeOther, url)
}

// GetSubscription lists the authenticated user's subscription rows.
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID := middleware.UserID(c)

	records, err := h.subs.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list subscriptions", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": records})
}

func (h *BillingHandler) HandleSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Subscription successful! Your account has been upgraded.",
		"price_id": c.Query("price_id"),
	})
}

func (h *BillingHandler) HandleCancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "cancelled",
		"message": "Subscription was cancelled. You can try again whenever you're ready.",
	})
}
