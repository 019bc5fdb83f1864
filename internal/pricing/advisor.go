package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"ms-nft-ticketing/internal/models"
)

var (
	maxMarkup   = decimal.NewFromFloat(0.5)  // +50% when nearly sold out
	maxDiscount = decimal.NewFromFloat(0.2)  // -20% for slow sellers
	lastMinute  = decimal.NewFromFloat(0.15) // extra bump inside 24h
)

// SuggestPrice is a pure function of sales data: base price scaled by
// sell-through ratio, with a late-demand bump when the event is close
// and selling well. Output is rounded to cents.
func SuggestPrice(event *models.Event, now time.Time) decimal.Decimal {
	base := decimal.NewFromFloat(event.BasePrice)
	if event.TotalTickets <= 0 {
		return base.Round(2)
	}

	sellThrough := decimal.NewFromInt(int64(event.TicketsSold)).
		Div(decimal.NewFromInt(int64(event.TotalTickets)))

	// Linear between -maxDiscount (nothing sold) and +maxMarkup (sold out).
	adjustment := sellThrough.Mul(maxMarkup.Add(maxDiscount)).Sub(maxDiscount)

	if event.Date.Sub(now) < 24*time.Hour && sellThrough.GreaterThan(decimal.NewFromFloat(0.5)) {
		adjustment = adjustment.Add(lastMinute)
	}

	suggested := base.Mul(decimal.NewFromInt(1).Add(adjustment))
	if suggested.IsNegative() {
		return decimal.Zero
	}
	return suggested.Round(2)
}
