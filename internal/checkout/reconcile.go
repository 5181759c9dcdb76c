package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/orders"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

type ConfirmResult struct {
	OrderID          string
	AlreadyConfirmed bool
}

// ConfirmOrder is the client-initiated confirmation path. The webhook
// frequently wins the race, so an already-paid order is the common case
// and returns immediately without a processor call. Otherwise the
// processor is the authority: only a succeeded intent finalizes the
// order; anything else leaves it pending for a later retry or the
// webhook.
func (s *Service) ConfirmOrder(ctx context.Context, paymentIntentID string) (*ConfirmResult, error) {
	if paymentIntentID == "" {
		return nil, ErrInvalidRequest
	}

	existing, err := s.ledger.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil && !errors.Is(err, orders.ErrOrderNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == models.OrderStatusPaid {
		return &ConfirmResult{OrderID: existing.ID.Hex(), AlreadyConfirmed: true}, nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	intent, err := s.processor.RetrievePaymentIntent(pctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return nil, ErrPaymentNotComplete
	}

	orderID, err := s.finalizePaid(ctx, existing, intent)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{OrderID: orderID}, nil
}

// ApplyPaymentSucceeded is the webhook confirmation path. The caller has
// already verified the delivery signature. Idempotent: redeliveries and
// races with the client path converge on the same paid order.
func (s *Service) ApplyPaymentSucceeded(ctx context.Context, intent *payments.Intent) (string, error) {
	if intent == nil || intent.ID == "" {
		return "", ErrInvalidRequest
	}

	existing, err := s.ledger.FindByPaymentIntentID(ctx, intent.ID)
	if err != nil && !errors.Is(err, orders.ErrOrderNotFound) {
		return "", err
	}
	if existing != nil && existing.Status == models.OrderStatusPaid {
		return existing.ID.Hex(), nil
	}

	return s.finalizePaid(ctx, existing, intent)
}

// finalizePaid runs after the processor has confirmed success, so any
// ledger failure here is a reconciliation gap: money collected with no
// local record. It is logged loudly before being returned; the webhook
// transport's redelivery is the retry mechanism.
func (s *Service) finalizePaid(ctx context.Context, existing *models.Order, intent *payments.Intent) (string, error) {
	customerName, customerEmail := billingContact(intent)

	if existing != nil {
		updated, err := s.ledger.MarkPaid(ctx, intent.ID, customerName, customerEmail)
		if err != nil {
			log.Printf("[RECONCILE] [ERROR] reconciliation gap: payment %s succeeded but order update failed: %v", intent.ID, err)
			return "", err
		}
		return updated.ID.Hex(), nil
	}

	// The ledger never learned about this intent (the best-effort write
	// at intent-creation time was lost). Rebuild the order from the
	// intent's embedded metadata.
	order := &models.Order{
		PaymentIntentID: intent.ID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		AmountTotal:     intent.Amount,
		Currency:        intent.Currency,
		Items:           itemsFromMetadata(intent),
	}

	err := s.ledger.InsertPaid(ctx, order)
	if errors.Is(err, orders.ErrDuplicatePaymentIntent) {
		// Lost the insert race to the other confirmation path. Converge
		// on the winner's row and make sure it is terminal.
		updated, markErr := s.ledger.MarkPaid(ctx, intent.ID, customerName, customerEmail)
		if markErr != nil {
			log.Printf("[RECONCILE] [ERROR] reconciliation gap: payment %s succeeded but post-race update failed: %v", intent.ID, markErr)
			return "", markErr
		}
		return updated.ID.Hex(), nil
	}
	if err != nil {
		log.Printf("[RECONCILE] [ERROR] reconciliation gap: payment %s succeeded but order insert failed: %v", intent.ID, err)
		return "", err
	}

	log.Printf("[RECONCILE] [INFO] order %s rebuilt from intent metadata for payment %s", order.ID.Hex(), intent.ID)
	return order.ID.Hex(), nil
}

func billingContact(intent *payments.Intent) (name, email string) {
	name = "Customer"
	email = intent.ReceiptEmail
	if pm := intent.ExpandedPaymentMethod(); pm != nil {
		if pm.BillingDetails.Name != "" {
			name = pm.BillingDetails.Name
		}
		if pm.BillingDetails.Email != "" {
			email = pm.BillingDetails.Email
		}
	}
	if email == "" {
		email = "unknown@example.com"
	}
	return name, email
}

func itemsFromMetadata(intent *payments.Intent) []models.OrderItem {
	snapshots, err := payments.DecodeCartItems(intent.Metadata[payments.MetadataCartItems])
	if err != nil {
		// The payment is real even if the metadata is not parseable;
		// record the order without line items rather than dropping it.
		log.Printf("[RECONCILE] [ERROR] unreadable cart metadata on intent %s: %v", intent.ID, err)
		return nil
	}

	items := make([]models.OrderItem, 0, len(snapshots))
	for _, snapshot := range snapshots {
		items = append(items, models.OrderItem{
			ProductID:    snapshot.ID,
			ProductTitle: snapshot.Title,
			Quantity:     snapshot.Quantity,
			Price:        snapshot.Price,
		})
	}
	return items
}
