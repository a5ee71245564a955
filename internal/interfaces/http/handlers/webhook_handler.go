package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/services"
)

const webhookBodyLimit = 1024 * 1024 // 1MiB

// WebhookHandler receives provider-signed Stripe events and reconciles local
// subscription state. Signature verification is the authentication mechanism
// for this endpoint; nothing in the payload is trusted before ConstructEvent
// succeeds.
type WebhookHandler struct {
	syncer        services.SubscriptionSyncer
	webhookSecret string
	logger        *slog.Logger
}

func NewWebhookHandler(syncer services.SubscriptionSyncer, webhookSecret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		syncer:        syncer,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// webhookSubscription is the slice of a subscription event payload this
// service reads. Decoding into a narrow struct avoids depending on the full
// Stripe object shape.
type webhookSubscription struct {
	ID                string            `json:"id"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	Metadata          map[string]string `json:"metadata"`
}

type webhookInvoice struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
}

func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature header"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	h.logger.Info("received webhook event", "event_id", event.ID, "type", string(event.Type))

	// The event is authenticated past this point. Downstream failures are
	// logged and the event is still acknowledged, otherwise Stripe re-delivers
	// on every transient database error.
	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		sub, ok := h.decodeSubscription(c, event.Data.Raw)
		if !ok {
			return
		}
		h.handleSubscriptionEvent(c.Request.Context(), event.Type, sub)

	case stripe.EventTypeInvoicePaymentSucceeded:
		inv, ok := h.decodeInvoice(c, event.Data.Raw)
		if !ok {
			return
		}
		if inv.Subscription != "" {
			if err := h.syncer.ReconcileInvoiceSubscription(c.Request.Context(), inv.Subscription); err != nil {
				h.logger.Error("failed to reconcile after payment success",
					"error", err, "invoice_id", inv.ID, "stripe_subscription_id", inv.Subscription)
			}
		}

	case stripe.EventTypeInvoicePaymentFailed:
		inv, ok := h.decodeInvoice(c, event.Data.Raw)
		if !ok {
			return
		}
		if inv.Subscription != "" {
			if err := h.syncer.MarkPaymentFailed(c.Request.Context(), inv.Subscription); err != nil {
				h.logger.Error("failed to record payment failure",
					"error", err, "invoice_id", inv.ID, "stripe_subscription_id", inv.Subscription)
			}
		}

	default:
		h.logger.Info("ignoring unhandled event type", "event_id", event.ID, "type", string(event.Type))
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *WebhookHandler) handleSubscriptionEvent(ctx context.Context, eventType stripe.EventType, sub *webhookSubscription) {
	userIDStr, exists := sub.Metadata["user_id"]
	if !exists || userIDStr == "" {
		// Not every Stripe event carries application identifiers; skip quietly
		// but leave a trace for observability.
		h.logger.Warn("subscription event has no user_id metadata, skipping",
			"type", string(eventType), "stripe_subscription_id", sub.ID)
		return
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("subscription event has malformed user_id metadata, skipping",
			"type", string(eventType), "stripe_subscription_id", sub.ID, "user_id", userIDStr)
		return
	}

	if eventType == stripe.EventTypeCustomerSubscriptionUpdated {
		// Informational only; the full reconciliation below reflects the true
		// status regardless of the pending-cancellation flag.
		h.logger.Info("subscription updated",
			"user_id", userID,
			"stripe_subscription_id", sub.ID,
			"cancel_at_period_end", sub.CancelAtPeriodEnd)
	}

	if err := h.syncer.Reconcile(ctx, userID, sub.ID); err != nil {
		h.logger.Error("failed to reconcile subscriptions",
			"error", err, "user_id", userID, "stripe_subscription_id", sub.ID)
	}
}

func (h *WebhookHandler) decodeSubscription(c *gin.Context, raw json.RawMessage) (*webhookSubscription, bool) {
	var sub webhookSubscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return nil, false
	}
	return &sub, true
}

func (h *WebhookHandler) decodeInvoice(c *gin.Context, raw json.RawMessage) (*webhookInvoice, bool) {
	var inv webhookInvoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return nil, false
	}
	return &inv, true
}
