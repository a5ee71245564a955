package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
)

// PlansTemplate renders the pricing widget: one card per configured price,
// plus the success/cancel notice driven by redirect query parameters. The
// small script clears those parameters so a refresh does not replay the
// notice.
var PlansTemplate = template.Must(template.New("plans").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Premium Subscriptions</title>
  <style>
    body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; }
    .plans { display: flex; gap: 1rem; }
    .plan { border: 1px solid #ccc; border-radius: 8px; padding: 1rem; flex: 1; }
    .notice { padding: 0.75rem; border-radius: 6px; margin-bottom: 1rem; }
    .notice.success { background: #e6f7e6; }
    .notice.cancelled { background: #fff4e0; }
    button { width: 100%; padding: 0.5rem; }
  </style>
</head>
<body>
  <h1>Choose Your Subscription Plan</h1>
  {{if .Success}}<div class="notice success">Subscription successful! Your account has been upgraded.</div>{{end}}
  {{if .Cancelled}}<div class="notice cancelled">Subscription was cancelled. You can try again whenever you're ready.</div>{{end}}
  <div class="plans">
    {{range .Plans}}
    <div class="plan">
      <h3>{{.ProductName}}</h3>
      {{if .Description}}<p>{{.Description}}</p>{{end}}
      <p><strong>{{.BillingDisplay}}</strong></p>
      {{if gt .TrialDays 0}}<p><em>{{.TrialDays}}-day free trial included</em></p>{{end}}
      <form method="GET" action="/billing/subscribe">
        <input type="hidden" name="price_id" value="{{.PriceID}}">
        <button type="submit">Subscribe - {{.AmountDisplay}}</button>
      </form>
    </div>
    {{end}}
  </div>
  <script>
    if (window.location.search) {
      history.replaceState(null, "", window.location.pathname);
    }
  </script>
</body>
</html>
`))

type plansPageData struct {
	Plans     []*models.PriceDetails
	Success   bool
	Cancelled bool
}

// PlansPage serves the server-rendered pricing page.
func (h *BillingHandler) PlansPage(c *gin.Context) {
	plans := make([]*models.PriceDetails, 0, len(h.priceIDs))
	for _, priceID := range h.priceIDs {
		d, err := h.billing.GetPriceDetails(c.Request.Context(), priceID)
		if err != nil {
			h.logger.Error("failed to fetch price details", "error", err, "price_id", priceID)
			continue
		}
		plans = append(plans, d)
	}

	c.HTML(http.StatusOK, "plans", plansPageData{
		Plans:     plans,
		Success:   c.Query("subscription_success") == "true",
		Cancelled: c.Query("subscription_cancelled") == "true",
	})
}
