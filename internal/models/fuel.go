package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FuelType is a catalog entry with a point-in-time price. Orders must copy
// PricePerLiter at creation, never reference it live.
type FuelType struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PricePerLiter decimal.Decimal `json:"price_per_liter"`
	IsAvailable   bool            `json:"is_available"`
	Description   string          `json:"description,omitempty"`
	StationID     *string         `json:"station_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FuelStation is a station operated by a station_owner user.
type FuelStation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateFuelRequest represents the fields a station owner may change on one
// of their fuel listings.
type UpdateFuelRequest struct {
	PricePerLiter *float64 `json:"price_per_liter,omitempty" validate:"omitempty,gt=0"`
	IsAvailable   *bool    `json:"is_available,omitempty"`
	Description   *string  `json:"description,omitempty"`
}
