package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/pricing"
)

func event(base float64, capacity, sold int, until time.Duration) *models.Event {
	return &models.Event{
		ID:           "event1",
		BasePrice:    base,
		TotalTickets: capacity,
		TicketsSold:  sold,
		Date:         time.Now().Add(until),
	}
}

func TestSuggestPriceScalesWithSellThrough(t *testing.T) {
	now := time.Now()

	// Nothing sold: full discount applies.
	slow := pricing.SuggestPrice(event(100, 100, 0, 30*24*time.Hour), now)
	assert.Equal(t, "80", slow.String())

	// Sold out: full markup applies.
	hot := pricing.SuggestPrice(event(100, 100, 100, 30*24*time.Hour), now)
	assert.Equal(t, "150", hot.String())

	// Halfway: +15% over base (linear midpoint between -20% and +50%).
	mid := pricing.SuggestPrice(event(100, 100, 50, 30*24*time.Hour), now)
	assert.Equal(t, "115", mid.String())
}

func TestSuggestPriceLastMinuteBump(t *testing.T) {
	now := time.Now()

	// Over half sold and inside 24 hours: extra bump.
	urgent := pricing.SuggestPrice(event(100, 100, 60, 12*time.Hour), now)
	// 60% sell-through: -20% + 0.6*70% = +22%, plus 15% bump = +37%.
	assert.Equal(t, "137", urgent.String())

	// Same sales but far out: no bump.
	calm := pricing.SuggestPrice(event(100, 100, 60, 30*24*time.Hour), now)
	assert.Equal(t, "122", calm.String())

	// Exactly 24h out: the window is strict, no bump.
	edge := pricing.SuggestPrice(event(100, 100, 60, 24*time.Hour), now)
	assert.Equal(t, "122", edge.String())

	// Inside 24h but half or less sold: no bump either.
	quiet := pricing.SuggestPrice(event(100, 100, 50, 12*time.Hour), now)
	assert.Equal(t, "115", quiet.String())
}

func TestSuggestPriceDegenerateInputs(t *testing.T) {
	now := time.Now()

	// Zero capacity: base price unchanged.
	zero := pricing.SuggestPrice(event(100, 0, 0, time.Hour), now)
	assert.Equal(t, "100", zero.String())

	// Rounded to cents.
	cents := pricing.SuggestPrice(event(33.33, 100, 50, 30*24*time.Hour), now)
	assert.Equal(t, "38.33", cents.String())
}

func TestSuggestPriceIsDeterministic(t *testing.T) {
	now := time.Now()
	e := event(75, 200, 120, 72*time.Hour)

	first := pricing.SuggestPrice(e, now)
	second := pricing.SuggestPrice(e, now)
	assert.True(t, first.Equal(second))
}
