package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// orderTransitions is the authoritative state machine definition. Statuses
// move along a strict forward path; cancellation is only reachable while the
// order has not started preparation.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:        {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderPreparing, OrderCancelled},
	OrderPreparing:      {OrderOutForDelivery},
	OrderOutForDelivery: {OrderDelivered},
	OrderDelivered:      {},
	OrderCancelled:      {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanCancel reports whether an order in status s may still be cancelled.
func (s OrderStatus) CanCancel() bool {
	return s == OrderPending || s == OrderConfirmed
}

// Display returns the human readable label for a status.
func (s OrderStatus) Display() string {
	switch s {
	case OrderPending:
		return "Order Placed"
	case OrderConfirmed:
		return "Order Confirmed"
	case OrderPreparing:
		return "Preparing Delivery"
	case OrderOutForDelivery:
		return "Out for Delivery"
	case OrderDelivered:
		return "Delivered"
	case OrderCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Order represents a fuel delivery order. PricePerLiter is the catalog price
// frozen at creation time; TotalFuelCost and TotalAmount are always
// recomputable from QuantityLiters, PricePerLiter and DeliveryFee.
type Order struct {
	ID                  string          `json:"id"`
	OrderNumber         string          `json:"order_number"`
	UserID              string          `json:"user_id"`
	FuelTypeID          string          `json:"fuel_type_id"`
	FuelType            *FuelType       `json:"fuel_type,omitempty"`
	QuantityLiters      decimal.Decimal `json:"quantity_liters"`
	PricePerLiter       decimal.Decimal `json:"price_per_liter"`
	TotalFuelCost       decimal.Decimal `json:"total_fuel_cost"`
	DeliveryAddressID   string          `json:"delivery_address_id"`
	DeliveryAddress     *Address        `json:"delivery_address,omitempty"`
	DeliveryDate        time.Time       `json:"delivery_date"`
	DeliveryTimeSlot    string          `json:"delivery_time_slot"`
	DeliveryFee         decimal.Decimal `json:"delivery_fee"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Status              OrderStatus     `json:"status"`
	StatusUpdatedAt     time.Time       `json:"status_updated_at"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	ConfirmedAt         *time.Time      `json:"confirmed_at,omitempty"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty"`
}

// OrderTracking is one immutable entry in an order's status audit trail.
// A row is appended for every transition, including the initial pending one.
type OrderTracking struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateOrderRequest represents the data needed to place a fuel order.
// The price is deliberately absent: it is re-read server side and snapshotted.
type CreateOrderRequest struct {
	FuelTypeID          string  `json:"fuel_type_id" validate:"required"`
	QuantityLiters      float64 `json:"quantity_liters" validate:"required,gte=1"`
	DeliveryAddressID   string  `json:"delivery_address_id" validate:"required"`
	DeliveryDate        string  `json:"delivery_date" validate:"required"` // "2006-01-02"
	DeliveryTimeSlot    string  `json:"delivery_time_slot" validate:"required"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// UpdateOrderStatusRequest represents a station owner or admin moving an
// order along its lifecycle.
type UpdateOrderStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=confirmed preparing out_for_delivery delivered cancelled"`
	Message string `json:"message,omitempty"`
}

// DashboardSummary aggregates a customer's order history for the dashboard.
type DashboardSummary struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	CompletedOrders int             `json:"completed_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
}
