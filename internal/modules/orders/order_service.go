package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fuel-express-backend/internal/models"

	"github.com/shopspring/decimal"
)

// LeadTime is the minimum gap between order submission and the requested
// delivery slot.
const LeadTime = 2 * time.Hour

// maxNumberAttempts bounds the regenerate-and-retry loop on order number
// collisions. The discriminator widens with every attempt, so exhausting this
// means something other than bad luck is wrong.
const maxNumberAttempts = 8

// FuelCatalog is the slice of the catalog module the order ledger needs at
// creation time: the live fuel record whose price gets snapshotted.
type FuelCatalog interface {
	GetFuel(ctx context.Context, fuelTypeID string) (*models.FuelType, error)
}

// AddressBook is the slice of the address module the order ledger needs:
// resolving the delivery address so ownership can be verified.
type AddressBook interface {
	GetAddress(ctx context.Context, addressID string) (*models.Address, error)
}

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error)
	GetDetails(ctx context.Context, orderID, userID string) (*models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber, userID string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
	ListStationOrders(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error)
	Cancel(ctx context.Context, orderID, userID string) error
	UpdateStatus(ctx context.Context, orderID, actorID string, actorRole models.Role, req models.UpdateOrderStatusRequest) (*models.Order, error)
	Tracking(ctx context.Context, orderID, userID string) ([]*models.OrderTracking, error)
	Dashboard(ctx context.Context, userID string) (*models.DashboardSummary, error)
}

// Service implements the order ledger logic.
type Service struct {
	repo        RepositoryInterface
	catalog     FuelCatalog
	addresses   AddressBook
	fees        FeePolicy
	orderPrefix string
	now         func() time.Time
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface, catalog FuelCatalog, addresses AddressBook, fees FeePolicy, orderPrefix string) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		addresses:   addresses,
		fees:        fees,
		orderPrefix: orderPrefix,
		now:         time.Now,
	}
}

// Create places a fuel order. The live catalog price is re-read here and
// frozen into the order; a client-submitted price is never trusted. The order
// row and its initial pending tracking entry are written atomically by the
// repository.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	quantity := decimal.NewFromFloat(req.QuantityLiters)
	if quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, models.ErrValidation
	}

	fuel, err := s.catalog.GetFuel(ctx, req.FuelTypeID)
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	if !fuel.IsAvailable {
		return nil, models.ErrFuelUnavailable
	}

	address, err := s.addresses.GetAddress(ctx, req.DeliveryAddressID)
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	if address.UserID != userID {
		return nil, models.ErrForbidden
	}

	deliveryDate, deliveryAt, err := parseDeliverySlot(req.DeliveryDate, req.DeliveryTimeSlot)
	if err != nil {
		return nil, models.ErrValidation
	}
	if deliveryAt.Before(s.now().Add(LeadTime)) {
		return nil, models.ErrSchedulingTooSoon
	}

	totalFuelCost := quantity.Mul(fuel.PricePerLiter)
	deliveryFee := s.fees.DeliveryFee(quantity)

	order := &models.Order{
		UserID:              userID,
		FuelTypeID:          fuel.ID,
		QuantityLiters:      quantity,
		PricePerLiter:       fuel.PricePerLiter,
		TotalFuelCost:       totalFuelCost,
		DeliveryAddressID:   address.ID,
		DeliveryDate:        deliveryDate,
		DeliveryTimeSlot:    req.DeliveryTimeSlot,
		DeliveryFee:         deliveryFee,
		TotalAmount:         totalFuelCost.Add(deliveryFee),
		Status:              models.OrderPending,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
	}

	// The date+random number format can collide; the unique constraint is the
	// source of truth. Regenerate and retry until the insert sticks.
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.OrderNumber = GenerateOrderNumber(s.orderPrefix, s.now(), attempt)
		created, err := s.repo.CreateWithTracking(ctx, order, "Order placed")
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			return nil, fmt.Errorf("service.Create: %w", err)
		}
		return created, nil
	}
	return nil, fmt.Errorf("service.Create: %w after %d attempts", models.ErrConflict, maxNumberAttempts)
}

// GetDetails retrieves a single order, ensuring the requester owns it.
func (s *Service) GetDetails(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetDetails: %w", err)
	}
	if order.UserID != userID {
		return nil, models.ErrNotFound // avoid leaking another user's order
	}
	return order, nil
}

// Get retrieves an order without an ownership check. For system callers
// (payment gateway callbacks), not request handlers.
func (s *Service) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

// GetByNumber retrieves a single order by its order number.
func (s *Service) GetByNumber(ctx context.Context, orderNumber, userID string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("service.GetByNumber: %w", err)
	}
	if order.UserID != userID {
		return nil, models.ErrNotFound
	}
	return order, nil
}

// ListUserOrders retrieves all orders for a specific user.
func (s *Service) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	orders, total, err := s.repo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListUserOrders: %w", err)
	}
	return orders, total, nil
}

// ListStationOrders retrieves orders placed against the owner's stations.
func (s *Service) ListStationOrders(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByStationOwner(ctx, ownerID, page, limit)
}

// Cancel cancels an order for a customer. Only pending and confirmed orders
// can still be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) error {
	order, err := s.GetDetails(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if !order.Status.CanCancel() {
		return models.ErrOrderCannotBeCancelled
	}
	return s.repo.UpdateStatusWithTracking(ctx, order.ID, order.Status, models.OrderCancelled, "Order cancelled by customer")
}

// UpdateStatus moves an order along its lifecycle. Admins may update any
// order; station owners only orders against their own stations. Transitions
// outside the forward path are rejected.
func (s *Service) UpdateStatus(ctx context.Context, orderID, actorID string, actorRole models.Role, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	newStatus := models.OrderStatus(req.Status)
	if !newStatus.Valid() {
		return nil, models.ErrValidation
	}

	switch actorRole {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleStationOwner:
		ownerID, err := s.repo.StationOwnerForOrder(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("service.UpdateStatus: %w", err)
		}
		if ownerID != actorID {
			return nil, models.ErrForbidden
		}
	default:
		return nil, models.ErrForbidden
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, models.ErrInvalidTransition
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = fmt.Sprintf("Order status changed from %s to %s", order.Status, newStatus)
	}
	if err := s.repo.UpdateStatusWithTracking(ctx, order.ID, order.Status, newStatus, message); err != nil {
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}
	return updated, nil
}

// Tracking returns the order's status history, oldest first.
func (s *Service) Tracking(ctx context.Context, orderID, userID string) ([]*models.OrderTracking, error) {
	if _, err := s.GetDetails(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListTracking(ctx, orderID)
}

// Dashboard aggregates the customer's order history.
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	return s.repo.Summary(ctx, userID)
}

// parseDeliverySlot combines a delivery date ("2006-01-02") with the start of
// a time slot ("09:00" or "09:00-11:00") into a point in time.
func parseDeliverySlot(date, slot string) (time.Time, time.Time, error) {
	start := slot
	if i := strings.IndexByte(slot, '-'); i >= 0 {
		start = slot[:i]
	}
	start = strings.TrimSpace(start)

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, at, nil
}
