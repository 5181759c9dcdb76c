package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/orders"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

// mockCatalog implements Catalog over a fixed product list.
type mockCatalog struct {
	products []models.Product
	err      error
}

func (m *mockCatalog) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var matched []models.Product
	for _, product := range m.products {
		if wanted[product.ProductID] {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

// memLedger implements Ledger in memory with the same semantics as the
// Mongo ledger: at most one order per payment intent, paid is terminal,
// contact backfill only over placeholders.
type memLedger struct {
	mu    sync.Mutex
	byPID map[string]*models.Order
	down  bool // every write fails

	failInsertPending bool

	insertPendingCalls int
	insertPaidCalls    int
	markPaidCalls      int
}

func newMemLedger() *memLedger {
	return &memLedger{byPID: make(map[string]*models.Order)}
}

func (m *memLedger) InsertPending(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertPendingCalls++
	if m.down || m.failInsertPending {
		return errors.New("ledger unavailable")
	}
	if _, exists := m.byPID[order.PaymentIntentID]; exists {
		return orders.ErrDuplicatePaymentIntent
	}
	clone := *order
	clone.ID = primitive.NewObjectID()
	clone.Status = models.OrderStatusPending
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	m.byPID[order.PaymentIntentID] = &clone
	order.ID = clone.ID
	return nil
}

func (m *memLedger) FindByPaymentIntentID(_ context.Context, paymentIntentID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byPID[paymentIntentID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	clone := *stored
	return &clone, nil
}

func (m *memLedger) MarkPaid(_ context.Context, paymentIntentID, customerName, customerEmail string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markPaidCalls++
	if m.down {
		return nil, errors.New("ledger unavailable")
	}
	stored, ok := m.byPID[paymentIntentID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	if stored.Status == models.OrderStatusPaid {
		clone := *stored
		return &clone, nil
	}
	if stored.HasPlaceholderContact() {
		if customerName != "" {
			stored.CustomerName = customerName
		}
		if customerEmail != "" {
			stored.CustomerEmail = customerEmail
		}
	}
	stored.Status = models.OrderStatusPaid
	stored.UpdatedAt = time.Now()
	clone := *stored
	return &clone, nil
}

func (m *memLedger) InsertPaid(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertPaidCalls++
	if m.down {
		return errors.New("ledger unavailable")
	}
	if _, exists := m.byPID[order.PaymentIntentID]; exists {
		return orders.ErrDuplicatePaymentIntent
	}
	clone := *order
	clone.ID = primitive.NewObjectID()
	clone.Status = models.OrderStatusPaid
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	m.byPID[order.PaymentIntentID] = &clone
	order.ID = clone.ID
	return nil
}

func (m *memLedger) UpdateContact(_ context.Context, paymentIntentID, customerName, customerEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errors.New("ledger unavailable")
	}
	stored, ok := m.byPID[paymentIntentID]
	if !ok || stored.Status != models.OrderStatusPending {
		return nil
	}
	stored.CustomerName = customerName
	stored.CustomerEmail = customerEmail
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPID)
}

// mockProcessor implements Processor with canned responses.
type mockProcessor struct {
	mu sync.Mutex

	createErr     error
	createdAmount int64
	createdMeta   map[string]string
	createCalls   int

	retrieveIntent *payments.Intent
	retrieveErr    error
	retrieveCalls  int
}

func (m *mockProcessor) CreatePaymentIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdAmount = amount
	m.createdMeta = metadata
	return &payments.Intent{
		ID:           "pi_test_1",
		ClientSecret: "pi_test_1_secret_abc",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}, nil
}

func (m *mockProcessor) RetrievePaymentIntent(_ context.Context, id string) (*payments.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrieveCalls++
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if m.retrieveIntent != nil {
		return m.retrieveIntent, nil
	}
	return &payments.Intent{ID: id, Status: payments.IntentStatusSucceeded}, nil
}
