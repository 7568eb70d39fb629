package payments

import (
	"context"
	"errors"
	"fmt"

	"fuel-express-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the payment repository.
type RepositoryInterface interface {
	Insert(ctx context.Context, p *models.Payment) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	ConfirmWithOrder(ctx context.Context, paymentID, orderID string, from, to models.OrderStatus, trackingMessage string) error
	MarkFailed(ctx context.Context, paymentID string) error
	UserEmail(ctx context.Context, userID string) (string, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new payment repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const paymentColumns = `id, order_id, amount, payment_mode, status, transaction_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.Amount,
		&p.Mode,
		&p.Status,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return &p, nil
}

// Insert creates the payment row. The 1:1 coupling with orders and the
// transaction id uniqueness are both enforced by constraints; violations map
// to the matching domain errors.
func (r *Repository) Insert(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (order_id, amount, payment_mode, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + paymentColumns

	created, err := scanPayment(r.db.QueryRow(ctx, query, p.OrderID, p.Amount, p.Mode, p.Status, p.TransactionID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "payments_order_id_key" {
				return nil, models.ErrDuplicatePayment
			}
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}
	return created, nil
}

// FindByOrderID retrieves the payment tied to an order.
func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	p, err := scanPayment(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByOrderID: %w", err)
	}
	return p, nil
}

// FindByTransactionID retrieves a payment by its gateway transaction id.
func (r *Repository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	p, err := scanPayment(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByTransactionID: %w", err)
	}
	return p, nil
}

// ConfirmWithOrder marks the payment completed and advances the order in one
// transaction, appending the tracking entry. A payment marked completed with
// the order left behind is never durably observable: any failure rolls back
// all three writes.
func (r *Repository) ConfirmWithOrder(ctx context.Context, paymentID, orderID string, from, to models.OrderStatus, trackingMessage string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.ConfirmWithOrder.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`UPDATE payments SET status = 'completed', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		paymentID,
	)
	if err != nil {
		return fmt.Errorf("repository.ConfirmWithOrder.Payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrPaymentNotPending
	}

	cmdTag, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = $2,
		    status_updated_at = NOW(),
		    confirmed_at = CASE WHEN $2 = 'confirmed' THEN COALESCE(confirmed_at, NOW()) ELSE confirmed_at END
		WHERE id = $1 AND status = $3`,
		orderID, to, from,
	)
	if err != nil {
		return fmt.Errorf("repository.ConfirmWithOrder.Order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_tracking (order_id, status, message) VALUES ($1, $2, $3)`,
		orderID, to, trackingMessage,
	)
	if err != nil {
		return fmt.Errorf("repository.ConfirmWithOrder.Tracking: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkFailed records a failed payment attempt.
func (r *Repository) MarkFailed(ctx context.Context, paymentID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE payments SET status = 'failed', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		paymentID,
	)
	if err != nil {
		return fmt.Errorf("repository.MarkFailed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrPaymentNotPending
	}
	return nil
}

// UserEmail resolves the notification recipient for a user.
func (r *Repository) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	if err := r.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.UserEmail: %w", err)
	}
	return email, nil
}
