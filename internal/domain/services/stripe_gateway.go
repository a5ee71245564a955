package services

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/price"
	"github.com/stripe/stripe-go/v79/product"
	"github.com/stripe/stripe-go/v79/subscription"
)

// StripeGateway is the slice of the Stripe API this service touches. Handlers
// and services depend on the interface so tests can swap in fakes.
type StripeGateway interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error)
	GetPrice(ctx context.Context, priceID string) (*stripe.Price, error)
	GetProduct(ctx context.Context, productID string) (*stripe.Product, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// stripeGateway calls Stripe through the package-level clients, keyed by
// stripe.Key set at startup.
type stripeGateway struct{}

func NewStripeGateway() StripeGateway {
	return &stripeGateway{}
}

func (g *stripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription from Stripe: %w", err)
	}
	return sub, nil
}

func (g *stripeGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx

	var subs []*stripe.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions from Stripe: %w", err)
	}

	return subs, nil
}

func (g *stripeGateway) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx

	p, err := price.Get(priceID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get price from Stripe: %w", err)
	}
	return p, nil
}

func (g *stripeGateway) GetProduct(ctx context.Context, productID string) (*stripe.Product, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx

	prod, err := product.Get(productID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get product from Stripe: %w", err)
	}
	return prod, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess, nil
}
