package models

import (
	"fmt"
	"strings"
)

// PriceDetails is the display view of a Stripe price plus its product,
// rendered on the pricing page and returned by the prices endpoint.
type PriceDetails struct {
	PriceID       string `json:"price_id"`
	ProductName   string `json:"product_name"`
	Description   string `json:"description"`
	UnitAmount    int64  `json:"unit_amount"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"`
	IntervalCount int64  `json:"interval_count"`
	TrialDays     int64  `json:"trial_days"`
	OneTime       bool   `json:"one_time"`
}

func (p *PriceDetails) AmountDisplay() string {
	if p.UnitAmount == 0 {
		return "Custom pricing"
	}
	return fmt.Sprintf("%.2f %s", float64(p.UnitAmount)/100, strings.ToUpper(p.Currency))
}

func (p *PriceDetails) BillingDisplay() string {
	if p.OneTime {
		return fmt.Sprintf("%s (one-time)", p.AmountDisplay())
	}
	if p.IntervalCount > 1 {
		return fmt.Sprintf("%s every %d %ss", p.AmountDisplay(), p.IntervalCount, p.Interval)
	}
	return fmt.Sprintf("%s per %s", p.AmountDisplay(), p.Interval)
}
