package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("STRIPE_PRICE_IDS", "price_a, price_b ,,price_c")
	t.Setenv("PORT", "9090")

	cfg := Load()

	assert.Equal(t, "sk_test_123", cfg.Billing.StripeSecret)
	assert.Equal(t, "whsec_123", cfg.Billing.WebhookSecret)
	assert.Equal(t, []string{"price_a", "price_b", "price_c"}, cfg.Billing.PriceIDs)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "sealog.db", cfg.Database.SQLitePath)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Nil(t, cfg.Billing.PriceIDs)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList("a"))
	assert.Equal(t, []string{"a", "b"}, splitList(" a , b "))
}
