package payment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"ms-nft-ticketing/internal/logger"
)

// InitStripe initializes the Stripe API with the secret key
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// StripeService creates payment intents for fiat ticket purchases. The
// resulting intent ID travels in the ticket's opaque payment metadata.
type StripeService struct {
	Currency string
	Logger   *logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewStripeService(currency string, log *logger.Logger) *StripeService {
	if currency == "" {
		currency = "usd"
	}
	return &StripeService{
		Currency: currency,
		Logger:   log,
		inFlight: make(map[string]bool),
	}
}

// CreatePaymentIntent creates a Stripe payment intent for one ticket
// purchase. Guarded per reference so a double-submitted purchase form
// cannot open two intents.
func (s *StripeService) CreatePaymentIntent(reference string, amount float64) (*stripe.PaymentIntent, error) {
	if amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}

	s.mu.Lock()
	if s.inFlight[reference] {
		s.mu.Unlock()
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Payment intent creation for %s already in progress", reference))
		return nil, fmt.Errorf("payment for %s is already being processed", reference)
	}
	s.inFlight[reference] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, reference)
		s.mu.Unlock()
	}()

	amountInCents := int64(amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("reference", reference)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.Logger.Error("PAYMENT", fmt.Sprintf("Failed to create payment intent for %s: %v", reference, err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.Logger.Info("PAYMENT", fmt.Sprintf("Created payment intent %s for %s", intent.ID, reference))
	return intent, nil
}
