package checkout

import (
	"context"
	"time"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

// CartLine is a client-supplied, untrusted line request. Only the id and
// quantity are ever read; prices come from the catalog.
type CartLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ResolvedLine is a trusted line item joined against the catalog.
// UnitAmount is in minor currency units.
type ResolvedLine struct {
	ProductID  int64
	Title      string
	UnitAmount int64
	Quantity   int
}

type Catalog interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

type Ledger interface {
	InsertPending(ctx context.Context, order *models.Order) error
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	MarkPaid(ctx context.Context, paymentIntentID, customerName, customerEmail string) (*models.Order, error)
	InsertPaid(ctx context.Context, order *models.Order) error
	UpdateContact(ctx context.Context, paymentIntentID, customerName, customerEmail string) error
}

type Processor interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*payments.Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*payments.Intent, error)
}

// Service owns the checkout flow: price resolution, intent creation and
// the two confirmation paths. It holds no per-request state; all
// coordination goes through the ledger's paymentIntentId uniqueness.
type Service struct {
	catalog   Catalog
	ledger    Ledger
	processor Processor
	currency  string
	timeout   time.Duration
}

func NewService(catalog Catalog, ledger Ledger, processor Processor, currency string, processorTimeout time.Duration) *Service {
	if processorTimeout <= 0 {
		processorTimeout = 10 * time.Second
	}
	return &Service{
		catalog:   catalog,
		ledger:    ledger,
		processor: processor,
		currency:  currency,
		timeout:   processorTimeout,
	}
}
