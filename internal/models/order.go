package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Contact placeholders written at intent-creation time, before the payer
// has filled the checkout form. Replaced by the sync call or by billing
// details at confirmation.
const (
	PlaceholderCustomerName  = "Guest (Pending)"
	PlaceholderCustomerEmail = "pending@checkout.com"
)

// OrderItem is a snapshot of a purchased line item. Title and price are
// captured at order time; later catalog edits never alter them.
type OrderItem struct {
	ProductID    int64  `bson:"productId" json:"productId"`
	ProductTitle string `bson:"productTitle" json:"productTitle"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	Price        int64  `bson:"price" json:"price"` // unit amount, minor currency units
}

// Order is the persisted order document. PaymentIntentID is the
// idempotency key for every confirmation path; a unique index keeps at
// most one order per intent.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail"`
	AmountTotal     int64              `bson:"amountTotal" json:"amountTotal"` // minor currency units
	Currency        string             `bson:"currency" json:"currency"`
	Status          string             `bson:"status" json:"status"`
	Items           []OrderItem        `bson:"items" json:"items"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasPlaceholderContact reports whether the order still carries the
// intent-creation placeholders instead of real payer details.
func (o *Order) HasPlaceholderContact() bool {
	return o.CustomerName == "" || o.CustomerName == PlaceholderCustomerName ||
		o.CustomerEmail == "" || o.CustomerEmail == PlaceholderCustomerEmail
}
