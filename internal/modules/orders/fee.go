package orders

import "github.com/shopspring/decimal"

// FeePolicy computes the delivery fee charged on top of the fuel cost.
// Kept as an interface so variable-fee rules (distance, quantity tiers) can
// slot in without touching the order creation path.
type FeePolicy interface {
	DeliveryFee(quantityLiters decimal.Decimal) decimal.Decimal
}

// FlatFee charges the same fee on every delivery.
type FlatFee struct {
	Amount decimal.Decimal
}

// NewFlatFee parses a configured fee amount like "50.00".
func NewFlatFee(amount string) (FlatFee, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return FlatFee{}, err
	}
	return FlatFee{Amount: d}, nil
}

func (f FlatFee) DeliveryFee(decimal.Decimal) decimal.Decimal {
	return f.Amount
}
