package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/checkout"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/orders"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

const testWebhookSecret = "whsec_test"

// fakeLedger is a minimal in-memory checkout.Ledger for handler tests.
type fakeLedger struct {
	mu    sync.Mutex
	byPID map[string]*models.Order
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{byPID: make(map[string]*models.Order)}
}

func (f *fakeLedger) InsertPending(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = primitive.NewObjectID()
	order.Status = models.OrderStatusPending
	clone := *order
	f.byPID[order.PaymentIntentID] = &clone
	return nil
}

func (f *fakeLedger) FindByPaymentIntentID(_ context.Context, paymentIntentID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byPID[paymentIntentID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeLedger) MarkPaid(_ context.Context, paymentIntentID, customerName, customerEmail string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byPID[paymentIntentID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	if stored.Status != models.OrderStatusPaid {
		if stored.HasPlaceholderContact() {
			if customerName != "" {
				stored.CustomerName = customerName
			}
			if customerEmail != "" {
				stored.CustomerEmail = customerEmail
			}
		}
		stored.Status = models.OrderStatusPaid
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeLedger) InsertPaid(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byPID[order.PaymentIntentID]; exists {
		return orders.ErrDuplicatePaymentIntent
	}
	order.ID = primitive.NewObjectID()
	order.Status = models.OrderStatusPaid
	clone := *order
	f.byPID[order.PaymentIntentID] = &clone
	return nil
}

func (f *fakeLedger) UpdateContact(_ context.Context, paymentIntentID, customerName, customerEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.byPID[paymentIntentID]; ok && stored.Status == models.OrderStatusPending {
		stored.CustomerName = customerName
		stored.CustomerEmail = customerEmail
	}
	return nil
}

type fakeCatalog struct{ products []models.Product }

func (f *fakeCatalog) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var matched []models.Product
	for _, product := range f.products {
		if wanted[product.ProductID] {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

type fakeProcessor struct {
	intent      *payments.Intent
	createCalls int
}

func (f *fakeProcessor) CreatePaymentIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	f.createCalls++
	return &payments.Intent{
		ID:           "pi_fake",
		ClientSecret: "pi_fake_secret",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}, nil
}

func (f *fakeProcessor) RetrievePaymentIntent(_ context.Context, id string) (*payments.Intent, error) {
	if f.intent != nil {
		return f.intent, nil
	}
	return &payments.Intent{ID: id, Status: payments.IntentStatusSucceeded}, nil
}

func newHandlerTestService(ledger *fakeLedger, processor *fakeProcessor) *checkout.Service {
	cat := &fakeCatalog{products: []models.Product{
		{ProductID: 1, Title: "Clinical Periodontology", CurrentPrice: 19.99, IsActive: true},
	}}
	return checkout.NewService(cat, ledger, processor, "usd", 5*time.Second)
}

func signBody(body []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%s.%s", timestamp, body)
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func webhookRouter(svc *checkout.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/payment", PaymentWebhook(svc, testWebhookSecret))
	return r
}

func succeededEventBody(paymentIntentID string) []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "` + paymentIntentID + `",
			"status": "succeeded",
			"amount": 3998,
			"currency": "usd",
			"receipt_email": "jane@example.com",
			"metadata": {"cart_items": "[{\"id\":1,\"title\":\"Clinical Periodontology\",\"quantity\":2,\"price\":1999}]"}
		}}
	}`)
}

func TestPaymentWebhookRejectsInvalidSignature(t *testing.T) {
	ledger := newFakeLedger()
	router := webhookRouter(newHandlerTestService(ledger, &fakeProcessor{}))

	body := succeededEventBody("pi_fake")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1700000000,v1=deadbeef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, err := ledger.FindByPaymentIntentID(context.Background(), "pi_fake")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound, "rejected deliveries must not touch the ledger")
}

func TestPaymentWebhookSettlesOrder(t *testing.T) {
	ledger := newFakeLedger()
	router := webhookRouter(newHandlerTestService(ledger, &fakeProcessor{}))

	body := succeededEventBody("pi_fake")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signBody(body, "1700000000"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order, err := ledger.FindByPaymentIntentID(context.Background(), "pi_fake")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(3998), order.AmountTotal)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestPaymentWebhookIgnoresOtherEventTypes(t *testing.T) {
	ledger := newFakeLedger()
	router := webhookRouter(newHandlerTestService(ledger, &fakeProcessor{}))

	body := []byte(`{"id": "evt_2", "type": "payment_intent.created", "data": {"object": {"id": "pi_fake"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signBody(body, "1700000000"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	_, err := ledger.FindByPaymentIntentID(context.Background(), "pi_fake")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestPaymentWebhookRedeliveryIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	router := webhookRouter(newHandlerTestService(ledger, &fakeProcessor{}))

	body := succeededEventBody("pi_fake")
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
		req.Header.Set("Stripe-Signature", signBody(body, "1700000000"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	order, err := ledger.FindByPaymentIntentID(context.Background(), "pi_fake")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}
