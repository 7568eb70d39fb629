package orders

import (
	"context"
	"errors"
	"fmt"

	"fuel-express-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order repository.
// Multi-row writes (order + tracking, status + tracking) run inside a single
// transaction so no partial state is ever durably observable.
type RepositoryInterface interface {
	CreateWithTracking(ctx context.Context, order *models.Order, trackingMessage string) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
	ListByStationOwner(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error)
	StationOwnerForOrder(ctx context.Context, orderID string) (string, error)
	UpdateStatusWithTracking(ctx context.Context, orderID string, from, to models.OrderStatus, message string) error
	ListTracking(ctx context.Context, orderID string) ([]*models.OrderTracking, error)
	Summary(ctx context.Context, userID string) (*models.DashboardSummary, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, order_number, user_id, fuel_type_id, quantity_liters, price_per_liter,
	total_fuel_cost, delivery_address_id, delivery_date, delivery_time_slot, delivery_fee,
	total_amount, status, status_updated_at, special_instructions, created_at, confirmed_at, delivered_at`

// CreateWithTracking inserts the order row and its initial tracking entry in
// one transaction. A unique violation on order_number maps to
// models.ErrConflict so the service can regenerate and retry.
func (r *Repository) CreateWithTracking(ctx context.Context, order *models.Order, trackingMessage string) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateWithTracking.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (order_number, user_id, fuel_type_id, quantity_liters, price_per_liter,
			total_fuel_cost, delivery_address_id, delivery_date, delivery_time_slot, delivery_fee,
			total_amount, status, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + orderColumns

	row := tx.QueryRow(ctx, query,
		order.OrderNumber, order.UserID, order.FuelTypeID, order.QuantityLiters, order.PricePerLiter,
		order.TotalFuelCost, order.DeliveryAddressID, order.DeliveryDate, order.DeliveryTimeSlot,
		order.DeliveryFee, order.TotalAmount, order.Status, order.SpecialInstructions,
	)
	created, err := scanOrder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateWithTracking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_tracking (order_id, status, message) VALUES ($1, $2, $3)`,
		created.ID, created.Status, trackingMessage,
	)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateWithTracking.Tracking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.CreateWithTracking.Commit: %w", err)
	}
	return created, nil
}

// scanOrder is a helper function to scan a row into an Order model.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.FuelTypeID,
		&order.QuantityLiters,
		&order.PricePerLiter,
		&order.TotalFuelCost,
		&order.DeliveryAddressID,
		&order.DeliveryDate,
		&order.DeliveryTimeSlot,
		&order.DeliveryFee,
		&order.TotalAmount,
		&order.Status,
		&order.StatusUpdatedAt,
		&order.SpecialInstructions,
		&order.CreatedAt,
		&order.ConfirmedAt,
		&order.DeliveredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FindByID retrieves a single order by its internal ID.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return order, nil
}

// FindByNumber retrieves a single order by its human-readable order number.
func (r *Repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByNumber: %w", err)
	}
	return order, nil
}

// ListByUserID retrieves all orders for a specific user with pagination.
func (r *Repository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByUserID.Scan: %w", err)
		}
		orders = append(orders, order)
	}

	var total int
	err = r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = $1", userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID.Count: %w", err)
	}

	return orders, total, nil
}

// ListByStationOwner retrieves orders whose fuel type belongs to one of the
// owner's stations, newest first.
func (r *Repository) ListByStationOwner(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + prefixedOrderColumns("o") + `
		FROM orders o
		JOIN fuel_types ft ON ft.id = o.fuel_type_id
		JOIN fuel_stations fs ON fs.id = ft.station_id
		WHERE fs.owner_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByStationOwner.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByStationOwner.Scan: %w", err)
		}
		orders = append(orders, order)
	}

	var total int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orders o
		JOIN fuel_types ft ON ft.id = o.fuel_type_id
		JOIN fuel_stations fs ON fs.id = ft.station_id
		WHERE fs.owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByStationOwner.Count: %w", err)
	}

	return orders, total, nil
}

// StationOwnerForOrder resolves the owner of the station whose fuel the order
// references. Returns models.ErrNotFound when the fuel type is not tied to a
// station.
func (r *Repository) StationOwnerForOrder(ctx context.Context, orderID string) (string, error) {
	query := `
		SELECT fs.owner_id
		FROM orders o
		JOIN fuel_types ft ON ft.id = o.fuel_type_id
		JOIN fuel_stations fs ON fs.id = ft.station_id
		WHERE o.id = $1`
	var ownerID string
	if err := r.db.QueryRow(ctx, query, orderID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.StationOwnerForOrder: %w", err)
	}
	return ownerID, nil
}

// UpdateStatusWithTracking moves an order to a new status and appends the
// tracking entry in one transaction. The WHERE clause pins the expected old
// status so a concurrent transition cannot be silently overwritten; a lost
// race surfaces as models.ErrConflict.
func (r *Repository) UpdateStatusWithTracking(ctx context.Context, orderID string, from, to models.OrderStatus, message string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatusWithTracking.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $2,
		    status_updated_at = NOW(),
		    confirmed_at = CASE WHEN $2 = 'confirmed' THEN COALESCE(confirmed_at, NOW()) ELSE confirmed_at END,
		    delivered_at = CASE WHEN $2 = 'delivered' THEN COALESCE(delivered_at, NOW()) ELSE delivered_at END
		WHERE id = $1 AND status = $3`

	cmdTag, err := tx.Exec(ctx, query, orderID, to, from)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatusWithTracking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_tracking (order_id, status, message) VALUES ($1, $2, $3)`,
		orderID, to, message,
	)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatusWithTracking.Tracking: %w", err)
	}

	return tx.Commit(ctx)
}

// ListTracking returns an order's tracking entries in the order they were
// appended.
func (r *Repository) ListTracking(ctx context.Context, orderID string) ([]*models.OrderTracking, error) {
	query := `
		SELECT id, order_id, status, message, created_at
		FROM order_tracking
		WHERE order_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListTracking.Query: %w", err)
	}
	defer rows.Close()

	var entries []*models.OrderTracking
	for rows.Next() {
		var t models.OrderTracking
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Status, &t.Message, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.ListTracking.Scan: %w", err)
		}
		entries = append(entries, &t)
	}
	return entries, nil
}

// Summary aggregates a user's order history for the dashboard.
func (r *Repository) Summary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'delivered'), 0)
		FROM orders
		WHERE user_id = $1`
	var s models.DashboardSummary
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.TotalOrders, &s.PendingOrders, &s.CompletedOrders, &s.TotalSpent)
	if err != nil {
		return nil, fmt.Errorf("repository.Summary: %w", err)
	}
	return &s, nil
}

func prefixedOrderColumns(alias string) string {
	return alias + `.id, ` + alias + `.order_number, ` + alias + `.user_id, ` + alias + `.fuel_type_id, ` +
		alias + `.quantity_liters, ` + alias + `.price_per_liter, ` + alias + `.total_fuel_cost, ` +
		alias + `.delivery_address_id, ` + alias + `.delivery_date, ` + alias + `.delivery_time_slot, ` +
		alias + `.delivery_fee, ` + alias + `.total_amount, ` + alias + `.status, ` + alias + `.status_updated_at, ` +
		alias + `.special_instructions, ` + alias + `.created_at, ` + alias + `.confirmed_at, ` + alias + `.delivered_at`
}
