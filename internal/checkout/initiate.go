package checkout

import (
	"context"
	"log"
	"strings"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

type CheckoutRequest struct {
	Lines         []CartLine
	CustomerName  string
	CustomerEmail string
}

type CheckoutResponse struct {
	PaymentIntentID string
	ClientSecret    string
}

// InitiateCheckout resolves trusted prices, creates the payment intent
// and records the pending order. The ledger write is best-effort: the
// intent already exists at the processor, so a failed local write must
// not block the payment — the confirm and webhook paths can rebuild the
// order from the intent's metadata.
func (s *Service) InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	resolved, total, err := s.ResolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	snapshots := make([]payments.CartItemSnapshot, 0, len(resolved))
	for _, line := range resolved {
		snapshots = append(snapshots, payments.CartItemSnapshot{
			ID:       line.ProductID,
			Title:    line.Title,
			Quantity: line.Quantity,
			Price:    line.UnitAmount,
		})
	}
	encoded, err := payments.EncodeCartItems(snapshots)
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	intent, err := s.processor.CreatePaymentIntent(pctx, total, s.currency, map[string]string{
		payments.MetadataCartItems: encoded,
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		PaymentIntentID: intent.ID,
		CustomerName:    contactOrPlaceholder(req.CustomerName, models.PlaceholderCustomerName),
		CustomerEmail:   contactOrPlaceholder(req.CustomerEmail, models.PlaceholderCustomerEmail),
		AmountTotal:     total,
		Currency:        s.currency,
		Items:           itemsFromLines(resolved),
	}
	if err := s.ledger.InsertPending(ctx, order); err != nil {
		log.Printf("[CHECKOUT] [ERROR] pending order write failed for intent %s: %v (order will be rebuilt from intent metadata at confirmation)", intent.ID, err)
	}

	return &CheckoutResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

// SyncContact upgrades the placeholder contact snapshot on a pending
// order while the payer is still on the details form. Fire-and-forget
// from the client's perspective: an unknown intent id is not an error.
func (s *Service) SyncContact(ctx context.Context, paymentIntentID, name, email string) error {
	if strings.TrimSpace(paymentIntentID) == "" {
		return ErrInvalidRequest
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest"
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = models.PlaceholderCustomerEmail
	}
	return s.ledger.UpdateContact(ctx, paymentIntentID, name, email)
}

func contactOrPlaceholder(value, placeholder string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return placeholder
}

func itemsFromLines(lines []ResolvedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductTitle: line.Title,
			Quantity:     line.Quantity,
			Price:        line.UnitAmount,
		})
	}
	return items
}
