package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// GatewayInterface is the contract for the external payment gateway.
type GatewayInterface interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (string, error)
}

// StripeGateway creates payment intents with Stripe. The intent id is what
// the core stores as the payment's transaction id; settlement confirmation
// arrives later through the gateway callback.
type StripeGateway struct {
	apiKey string
}

// NewStripeGateway configures the Stripe client. With an empty key the
// gateway runs in simulation mode and fabricates intent ids, which keeps
// local development working without a Stripe account.
func NewStripeGateway(apiKey string) *StripeGateway {
	if apiKey != "" {
		stripe.Key = apiKey
	}
	return &StripeGateway{apiKey: apiKey}
}

// CreateIntent registers the charge with Stripe and returns its id.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (string, error) {
	if amount.Sign() <= 0 {
		return "", fmt.Errorf("invalid payment amount %s", amount)
	}
	if g.apiKey == "" {
		return "sim_" + uuid.NewString(), nil
	}

	params := &stripe.PaymentIntentParams{
		// Stripe amounts are in the smallest currency unit.
		Amount:      stripe.Int64(amount.Mul(decimal.NewFromInt(100)).IntPart()),
		Currency:    stripe.String(currency),
		Description: stripe.String("FuelExpress order " + orderNumber),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create intent for order %s: %w", orderNumber, err)
	}
	return pi.ID, nil
}
