package models

import "time"

// Address is a customer delivery address. At most one address per user has
// IsDefault set; an address referenced by orders cannot be deleted.
type Address struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Label        string    `json:"label,omitempty"` // Home, Office, etc.
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Pincode      string    `json:"pincode"`
	Landmark     string    `json:"landmark,omitempty"`
	IsDefault    bool      `json:"is_default"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddressRequest represents the data needed to add or update an address.
type AddressRequest struct {
	Label        string `json:"label,omitempty"`
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Pincode      string `json:"pincode" validate:"required"`
	Landmark     string `json:"landmark,omitempty"`
	IsDefault    bool   `json:"is_default"`
}
