package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/services"
	"github.com/will8688/sealog-cloud-webhook/internal/interfaces/http/middleware"
)

type fakeBillingService struct {
	details  map[string]*models.PriceDetails
	requests []services.CheckoutRequest
	url      string
}

func (f *fakeBillingService) GetPriceDetails(ctx context.Context, priceID string) (*models.PriceDetails, error) {
	d, exists := f.details[priceID]
	if !exists {
		return nil, fmt.Errorf("no such price: %s", priceID)
	}
	return d, nil
}

func (f *fakeBillingService) CreateCheckoutSession(ctx context.Context, req services.CheckoutRequest) (string, string, error) {
	f.requests = append(f.requests, req)
	return f.url, "cs_test_1", nil
}

type fakeSubLister struct {
	rows map[int64][]*models.SubscriptionRecord
}

func (f *fakeSubLister) ListByUserID(ctx context.Context, userID int64) ([]*models.SubscriptionRecord, error) {
	return f.rows[userID], nil
}

func (f *fakeSubLister) ReplaceForUser(ctx context.Context, userID int64, records []*models.SubscriptionRecord) error {
	f.rows[userID] = records
	return nil
}

func newBillingTestRouter(billing *fakeBillingService, subs *fakeSubLister, jwtService services.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	handler := NewBillingHandler(billing, subs, []string{"price_a"}, logger)

	router := gin.New()
	router.SetHTMLTemplate(PlansTemplate)
	router.GET("/billing/plans", handler.PlansPage)
	router.GET("/billing/subscribe", middleware.OptionalJWTAuth(jwtService), handler.Subscribe)
	router.GET("/api/billing/prices", handler.GetPrices)
	router.POST("/api/billing/checkout", middleware.JWTAuth(jwtService), handler.CreateCheckout)
	router.GET("/api/billing/subscription", middleware.JWTAuth(jwtService), handler.GetSubscription)
	return router
}

func premiumDetails() map[string]*models.PriceDetails {
	return map[string]*models.PriceDetails{
		"price_a": {
			PriceID:       "price_a",
			ProductName:   "Sea Log Premium",
			UnitAmount:    1999,
			Currency:      "usd",
			Interval:      "month",
			IntervalCount: 1,
		},
	}
}

func TestGetPricesReturnsDetails(t *testing.T) {
	billing := &fakeBillingService{details: premiumDetails()}
	router := newBillingTestRouter(billing, &fakeSubLister{}, services.NewJWTService("s", time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/billing/prices?price_id=price_a", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sea Log Premium")
}

func TestCreateCheckoutRequiresAuth(t *testing.T) {
	billing := &fakeBillingService{details: premiumDetails(), url: "https://checkout.stripe.test/cs_test_1"}
	router := newBillingTestRouter(billing, &fakeSubLister{}, services.NewJWTService("s", time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", strings.NewReader(`{"price_id": "price_a"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, billing.requests)
}

func TestCreateCheckoutWithToken(t *testing.T) {
	jwtService := services.NewJWTService("s", time.Hour)
	billing := &fakeBillingService{details: premiumDetails(), url: "https://checkout.stripe.test/cs_test_1"}
	router := newBillingTestRouter(billing, &fakeSubLister{}, jwtService)

	token, err := jwtService.GenerateToken(42, "sailor@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", strings.NewReader(`{"price_id": "price_a"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://checkout.stripe.test/cs_test_1")

	require.Len(t, billing.requests, 1)
	assert.Equal(t, int64(42), billing.requests[0].UserID)
	assert.Equal(t, "price_a", billing.requests[0].PriceID)
}

func TestSubscribeRedirectsAnonymously(t *testing.T) {
	billing := &fakeBillingService{details: premiumDetails(), url: "https://checkout.stripe.test/cs_test_1"}
	router := newBillingTestRouter(billing, &fakeSubLister{}, services.NewJWTService("s", time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/billing/subscribe?price_id=price_a", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", w.Header().Get("Location"))

	require.Len(t, billing.requests, 1)
	assert.Equal(t, int64(0), billing.requests[0].UserID)
}

func TestGetSubscriptionListsRows(t *testing.T) {
	jwtService := services.NewJWTService("s", time.Hour)
	subs := &fakeSubLister{rows: map[int64][]*models.SubscriptionRecord{
		42: {{UserID: 42, StripeSubscriptionID: "sub_1", StripePriceID: "price_a", Status: "active"}},
	}}
	router := newBillingTestRouter(&fakeBillingService{}, subs, jwtService)

	token, err := jwtService.GenerateToken(42, "sailor@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/billing/subscription", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sub_1")
}

func TestPlansPageRendersNotices(t *testing.T) {
	billing := &fakeBillingService{details: premiumDetails()}
	router := newBillingTestRouter(billing, &fakeSubLister{}, services.NewJWTService("s", time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/billing/plans?subscription_success=true&price_id=price_a", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Sea Log Premium")
	assert.Contains(t, body, "Subscription successful")
	assert.NotContains(t, body, "Subscription was cancelled")
}
