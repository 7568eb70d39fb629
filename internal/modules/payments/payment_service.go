package payments

import (
	"context"
	"fmt"
	"log"

	"fuel-express-backend/internal/models"

	"github.com/shopspring/decimal"
)

// OrderLedger is the slice of the order module the payment step needs:
// resolving an order with its ownership check.
type OrderLedger interface {
	GetDetails(ctx context.Context, orderID, userID string) (*models.Order, error)
	// Get is the system-level lookup used by gateway callbacks, which act on
	// the payment's own order reference rather than a user session.
	Get(ctx context.Context, orderID string) (*models.Order, error)
}

// Gateway is the external payment gateway collaborator. Initiating an online
// payment creates an intent whose id becomes the transaction id.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (string, error)
}

// Notifier delivers best-effort customer notifications. Failures are logged,
// never propagated into transactional state.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ServiceInterface defines the contract for the payment service.
type ServiceInterface interface {
	Initiate(ctx context.Context, userID string, req models.InitiatePaymentRequest) (*models.Payment, error)
	ConfirmCOD(ctx context.Context, userID, orderID string) (*models.Payment, error)
	ConfirmOnline(ctx context.Context, transactionID string) (*models.Payment, error)
	FailOnline(ctx context.Context, transactionID string) (*models.Payment, error)
	GetForOrder(ctx context.Context, userID, orderID string) (*models.Payment, error)
}

// Service implements the payment record logic.
type Service struct {
	repo     RepositoryInterface
	ledger   OrderLedger
	gateway  Gateway
	notifier Notifier
}

// NewService creates a new payment service.
func NewService(repo RepositoryInterface, ledger OrderLedger, gateway Gateway, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		gateway:  gateway,
		notifier: notifier,
	}
}

// Initiate creates the pending payment record for an order, 1:1. Online mode
// asks the gateway for an intent up front so the transaction id is recorded
// with the row.
func (s *Service) Initiate(ctx context.Context, userID string, req models.InitiatePaymentRequest) (*models.Payment, error) {
	order, err := s.ledger.GetDetails(ctx, req.OrderID, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Initiate: %w", err)
	}
	if order.Status != models.OrderPending {
		return nil, models.ErrInvalidTransition
	}

	payment := &models.Payment{
		OrderID: order.ID,
		Amount:  order.TotalAmount,
		Mode:    models.PaymentMode(req.Mode),
		Status:  models.PaymentPending,
	}

	if payment.Mode == models.PaymentModeOnline {
		txnID, err := s.gateway.CreateIntent(ctx, order.TotalAmount, "inr", order.OrderNumber)
		if err != nil {
			return nil, fmt.Errorf("service.Initiate: gateway: %w", err)
		}
		payment.TransactionID = &txnID
	}

	created, err := s.repo.Insert(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("service.Initiate: %w", err)
	}
	return created, nil
}

// ConfirmCOD completes a cash-on-delivery payment and confirms the order.
// The two status writes happen in one repository transaction; the
// confirmation email goes out only after that commit.
func (s *Service) ConfirmCOD(ctx context.Context, userID, orderID string) (*models.Payment, error) {
	order, err := s.ledger.GetDetails(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmCOD: %w", err)
	}

	payment, err := s.repo.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmCOD: %w", err)
	}
	if payment.Mode != models.PaymentModeCOD {
		return nil, models.ErrValidation
	}
	if payment.Status != models.PaymentPending {
		return nil, models.ErrPaymentNotPending
	}
	if !order.Status.CanTransitionTo(models.OrderConfirmed) {
		return nil, models.ErrInvalidTransition
	}

	err = s.repo.ConfirmWithOrder(ctx, payment.ID, order.ID, order.Status, models.OrderConfirmed,
		"Cash on delivery selected, order confirmed")
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmCOD: %w", err)
	}

	s.notifyConfirmed(order)

	return s.repo.FindByOrderID(ctx, order.ID)
}

// ConfirmOnline is the contract the gateway callback drives once an online
// payment settles. It mirrors ConfirmCOD but is keyed by transaction id.
func (s *Service) ConfirmOnline(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmOnline: %w", err)
	}
	if payment.Status != models.PaymentPending {
		return nil, models.ErrPaymentNotPending
	}

	order, err := s.ledger.Get(ctx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmOnline: %w", err)
	}
	if !order.Status.CanTransitionTo(models.OrderConfirmed) {
		return nil, models.ErrInvalidTransition
	}

	err = s.repo.ConfirmWithOrder(ctx, payment.ID, payment.OrderID, order.Status, models.OrderConfirmed,
		"Online payment received, order confirmed")
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmOnline: %w", err)
	}

	s.notifyConfirmed(order)

	return s.repo.FindByOrderID(ctx, payment.OrderID)
}

// FailOnline records a gateway-reported settlement failure. The order stays
// where it was; only the payment record moves to failed.
func (s *Service) FailOnline(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("service.FailOnline: %w", err)
	}
	if err := s.repo.MarkFailed(ctx, payment.ID); err != nil {
		return nil, fmt.Errorf("service.FailOnline: %w", err)
	}
	return s.repo.FindByOrderID(ctx, payment.OrderID)
}

// GetForOrder returns the payment record for one of the caller's orders.
func (s *Service) GetForOrder(ctx context.Context, userID, orderID string) (*models.Payment, error) {
	order, err := s.ledger.GetDetails(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetForOrder: %w", err)
	}
	return s.repo.FindByOrderID(ctx, order.ID)
}

// notifyConfirmed sends the order-confirmation mail after the confirming
// transaction has committed. Best effort: a mail failure never rolls anything
// back.
func (s *Service) notifyConfirmed(order *models.Order) {
	if s.notifier == nil {
		return
	}
	go func(o models.Order) {
		ctx := context.Background()
		email, err := s.repo.UserEmail(ctx, o.UserID)
		if err != nil {
			log.Printf("payments: lookup recipient for order %s: %v", o.OrderNumber, err)
			return
		}
		body := fmt.Sprintf(
			"Hello,\n\nYour order %s has been confirmed.\nTotal amount: %s\n\nThank you,\nFuelExpress Team",
			o.OrderNumber, o.TotalAmount.StringFixed(2),
		)
		if err := s.notifier.Send(ctx, email, "Order Confirmed - FuelExpress", body); err != nil {
			log.Printf("payments: send confirmation for order %s: %v", o.OrderNumber, err)
		}
	}(*order)
}
