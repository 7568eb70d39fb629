package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fuel-express-backend/internal/models"

	"github.com/shopspring/decimal"
)

// fakeLedger serves orders the way the order service does: GetDetails applies
// the ownership check, Get does not.
type fakeLedger struct {
	orders map[string]*models.Order
	owners map[string]string // order id -> user id
}

func (f *fakeLedger) GetDetails(_ context.Context, orderID, userID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || f.owners[orderID] != userID {
		return nil, models.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (f *fakeLedger) Get(_ context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *o
	return &out, nil
}

// fakePaymentRepo keeps payment rows in memory. ConfirmWithOrder mutates the
// payment and the ledger's order together, or neither when failConfirm is set,
// mirroring the real transactional behavior.
type fakePaymentRepo struct {
	nextID      int
	byID        map[string]*models.Payment
	byOrder     map[string]string
	byTxn       map[string]string
	ledger      *fakeLedger
	emails      map[string]string
	tracking    []string
	failConfirm bool
}

func newPaymentFixture() (*fakePaymentRepo, *fakeLedger) {
	ledger := &fakeLedger{
		orders: map[string]*models.Order{
			"order-1": {
				ID:          "order-1",
				OrderNumber: "FE260314042",
				UserID:      "user-1",
				Status:      models.OrderPending,
				TotalAmount: decimal.RequireFromString("1050.00"),
			},
		},
		owners: map[string]string{"order-1": "user-1"},
	}
	repo := &fakePaymentRepo{
		byID:    make(map[string]*models.Payment),
		byOrder: make(map[string]string),
		byTxn:   make(map[string]string),
		ledger:  ledger,
		emails:  map[string]string{"user-1": "asha@example.com"},
	}
	return repo, ledger
}

func (f *fakePaymentRepo) Insert(_ context.Context, p *models.Payment) (*models.Payment, error) {
	if _, taken := f.byOrder[p.OrderID]; taken {
		return nil, models.ErrDuplicatePayment
	}
	f.nextID++
	stored := *p
	stored.ID = fmt.Sprintf("pay-%d", f.nextID)
	stored.CreatedAt = time.Now()
	f.byID[stored.ID] = &stored
	f.byOrder[stored.OrderID] = stored.ID
	if stored.TransactionID != nil {
		f.byTxn[*stored.TransactionID] = stored.ID
	}
	out := stored
	return &out, nil
}

func (f *fakePaymentRepo) FindByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	id, ok := f.byOrder[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *f.byID[id]
	return &out, nil
}

func (f *fakePaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	id, ok := f.byTxn[transactionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *f.byID[id]
	return &out, nil
}

func (f *fakePaymentRepo) ConfirmWithOrder(_ context.Context, paymentID, orderID string, from, to models.OrderStatus, trackingMessage string) error {
	if f.failConfirm {
		return errors.New("connection reset")
	}
	p, ok := f.byID[paymentID]
	if !ok {
		return models.ErrNotFound
	}
	if p.Status != models.PaymentPending {
		return models.ErrPaymentNotPending
	}
	o, ok := f.ledger.orders[orderID]
	if !ok || o.Status != from {
		return models.ErrConflict
	}
	p.Status = models.PaymentCompleted
	o.Status = to
	f.tracking = append(f.tracking, trackingMessage)
	return nil
}

func (f *fakePaymentRepo) MarkFailed(_ context.Context, paymentID string) error {
	p, ok := f.byID[paymentID]
	if !ok {
		return models.ErrNotFound
	}
	if p.Status != models.PaymentPending {
		return models.ErrPaymentNotPending
	}
	p.Status = models.PaymentFailed
	return nil
}

func (f *fakePaymentRepo) UserEmail(_ context.Context, userID string) (string, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", models.ErrNotFound
	}
	return email, nil
}

type fakeGateway struct {
	calls  int
	amount decimal.Decimal
	number string
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount decimal.Decimal, currency, orderNumber string) (string, error) {
	f.calls++
	f.amount = amount
	f.number = orderNumber
	return "pi_test_1", nil
}

type mailRecord struct {
	to, subject, body string
}

type channelNotifier struct {
	sent chan mailRecord
}

func (n *channelNotifier) Send(_ context.Context, to, subject, body string) error {
	n.sent <- mailRecord{to, subject, body}
	return nil
}

func TestInitiateCOD(t *testing.T) {
	repo, _ := newPaymentFixture()
	gw := &fakeGateway{}
	svc := NewService(repo, repo.ledger, gw, nil)

	p, err := svc.Initiate(context.Background(), "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if p.Status != models.PaymentPending || p.Mode != models.PaymentModeCOD {
		t.Errorf("payment = %+v", p)
	}
	if !p.Amount.Equal(decimal.RequireFromString("1050.00")) {
		t.Errorf("amount = %s, want the order total", p.Amount)
	}
	if p.TransactionID != nil {
		t.Error("COD payment has a transaction id")
	}
	if gw.calls != 0 {
		t.Error("gateway called for COD payment")
	}
}

func TestInitiateOnlineCreatesIntent(t *testing.T) {
	repo, _ := newPaymentFixture()
	gw := &fakeGateway{}
	svc := NewService(repo, repo.ledger, gw, nil)

	p, err := svc.Initiate(context.Background(), "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "online"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if p.TransactionID == nil || *p.TransactionID != "pi_test_1" {
		t.Errorf("transaction id = %v, want pi_test_1", p.TransactionID)
	}
	if gw.calls != 1 || gw.number != "FE260314042" {
		t.Errorf("gateway calls = %d number = %q", gw.calls, gw.number)
	}
	if !gw.amount.Equal(decimal.RequireFromString("1050.00")) {
		t.Errorf("gateway amount = %s", gw.amount)
	}
}

func TestInitiateRejections(t *testing.T) {
	t.Run("foreign order", func(t *testing.T) {
		repo, _ := newPaymentFixture()
		svc := NewService(repo, repo.ledger, &fakeGateway{}, nil)
		_, err := svc.Initiate(context.Background(), "user-2", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Initiate = %v, want ErrNotFound", err)
		}
	})

	t.Run("order already confirmed", func(t *testing.T) {
		repo, ledger := newPaymentFixture()
		ledger.orders["order-1"].Status = models.OrderConfirmed
		svc := NewService(repo, ledger, &fakeGateway{}, nil)
		_, err := svc.Initiate(context.Background(), "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"})
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("Initiate = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("second payment for same order", func(t *testing.T) {
		repo, _ := newPaymentFixture()
		svc := NewService(repo, repo.ledger, &fakeGateway{}, nil)
		ctx := context.Background()
		if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"}); err != nil {
			t.Fatalf("first Initiate: %v", err)
		}
		_, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "online"})
		if !errors.Is(err, models.ErrDuplicatePayment) {
			t.Errorf("second Initiate = %v, want ErrDuplicatePayment", err)
		}
	})
}

func TestConfirmCOD(t *testing.T) {
	repo, ledger := newPaymentFixture()
	svc := NewService(repo, ledger, &fakeGateway{}, nil)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	p, err := svc.ConfirmCOD(ctx, "user-1", "order-1")
	if err != nil {
		t.Fatalf("ConfirmCOD: %v", err)
	}
	if p.Status != models.PaymentCompleted {
		t.Errorf("payment status = %s, want completed", p.Status)
	}
	if ledger.orders["order-1"].Status != models.OrderConfirmed {
		t.Errorf("order status = %s, want confirmed", ledger.orders["order-1"].Status)
	}
	if len(repo.tracking) != 1 || repo.tracking[0] != "Cash on delivery selected, order confirmed" {
		t.Errorf("tracking = %v", repo.tracking)
	}

	// Already completed: confirming again must be rejected.
	if _, err := svc.ConfirmCOD(ctx, "user-1", "order-1"); !errors.Is(err, models.ErrPaymentNotPending) {
		t.Errorf("second ConfirmCOD = %v, want ErrPaymentNotPending", err)
	}
}

func TestConfirmCODWrongMode(t *testing.T) {
	repo, ledger := newPaymentFixture()
	svc := NewService(repo, ledger, &fakeGateway{}, nil)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "online"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if _, err := svc.ConfirmCOD(ctx, "user-1", "order-1"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("ConfirmCOD on online payment = %v, want ErrValidation", err)
	}
}

func TestConfirmCODFailureLeavesStateUntouched(t *testing.T) {
	repo, ledger := newPaymentFixture()
	svc := NewService(repo, ledger, &fakeGateway{}, nil)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	repo.failConfirm = true
	if _, err := svc.ConfirmCOD(ctx, "user-1", "order-1"); err == nil {
		t.Fatal("ConfirmCOD succeeded despite repository failure")
	}

	p, _ := repo.FindByOrderID(ctx, "order-1")
	if p.Status != models.PaymentPending {
		t.Errorf("payment status = %s, want still pending", p.Status)
	}
	if ledger.orders["order-1"].Status != models.OrderPending {
		t.Errorf("order status = %s, want still pending", ledger.orders["order-1"].Status)
	}
}

func TestConfirmOnline(t *testing.T) {
	repo, ledger := newPaymentFixture()
	svc := NewService(repo, ledger, &fakeGateway{}, nil)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "online"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	p, err := svc.ConfirmOnline(ctx, "pi_test_1")
	if err != nil {
		t.Fatalf("ConfirmOnline: %v", err)
	}
	if p.Status != models.PaymentCompleted {
		t.Errorf("payment status = %s, want completed", p.Status)
	}
	if ledger.orders["order-1"].Status != models.OrderConfirmed {
		t.Errorf("order status = %s, want confirmed", ledger.orders["order-1"].Status)
	}
	if len(repo.tracking) != 1 || repo.tracking[0] != "Online payment received, order confirmed" {
		t.Errorf("tracking = %v", repo.tracking)
	}

	if _, err := svc.ConfirmOnline(ctx, "pi_test_1"); !errors.Is(err, models.ErrPaymentNotPending) {
		t.Errorf("replayed callback = %v, want ErrPaymentNotPending", err)
	}
	if _, err := svc.ConfirmOnline(ctx, "pi_unknown"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown transaction = %v, want ErrNotFound", err)
	}
}

func TestFailOnline(t *testing.T) {
	repo, ledger := newPaymentFixture()
	svc := NewService(repo, ledger, &fakeGateway{}, nil)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "online"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	p, err := svc.FailOnline(ctx, "pi_test_1")
	if err != nil {
		t.Fatalf("FailOnline: %v", err)
	}
	if p.Status != models.PaymentFailed {
		t.Errorf("payment status = %s, want failed", p.Status)
	}
	if ledger.orders["order-1"].Status != models.OrderPending {
		t.Errorf("order status = %s, want still pending", ledger.orders["order-1"].Status)
	}

	// A failed payment cannot later be confirmed.
	if _, err := svc.ConfirmOnline(ctx, "pi_test_1"); !errors.Is(err, models.ErrPaymentNotPending) {
		t.Errorf("ConfirmOnline after failure = %v, want ErrPaymentNotPending", err)
	}
}

func TestConfirmSendsMailAfterCommit(t *testing.T) {
	repo, ledger := newPaymentFixture()
	notifier := &channelNotifier{sent: make(chan mailRecord, 1)}
	svc := NewService(repo, ledger, &fakeGateway{}, notifier)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if _, err := svc.ConfirmCOD(ctx, "user-1", "order-1"); err != nil {
		t.Fatalf("ConfirmCOD: %v", err)
	}

	select {
	case mail := <-notifier.sent:
		if mail.to != "asha@example.com" {
			t.Errorf("mail to = %q", mail.to)
		}
		if !strings.Contains(mail.body, "FE260314042") || !strings.Contains(mail.body, "1050.00") {
			t.Errorf("mail body = %q", mail.body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation mail never sent")
	}
}

func TestGetForOrderOwnership(t *testing.T) {
	repo, ledger := newPaymentFixture()
	svc := NewService(repo, ledger, &fakeGateway{}, nil)
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, "user-1", models.InitiatePaymentRequest{OrderID: "order-1", Mode: "cod"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if _, err := svc.GetForOrder(ctx, "user-2", "order-1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetForOrder as stranger = %v, want ErrNotFound", err)
	}
	if p, err := svc.GetForOrder(ctx, "user-1", "order-1"); err != nil || p.OrderID != "order-1" {
		t.Errorf("GetForOrder = %+v, %v", p, err)
	}
}
