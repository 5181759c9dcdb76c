package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicatePaymentIntent surfaces the unique-index backstop: some
	// other path already inserted an order for this payment intent.
	ErrDuplicatePaymentIntent = errors.New("order already exists for payment intent")
)

// Ledger is the durable order store. Every write keyed on a payment
// intent goes through here so the paymentIntentId unique index can act
// as the final guard against duplicate orders.
type Ledger struct {
	db *mongo.Database
}

func NewLedger(db *mongo.Database) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) collection() *mongo.Collection {
	return l.db.Collection("orders")
}

// InsertPending records the abandoned-cart row written at intent-creation
// time, before the payer has paid.
func (l *Ledger) InsertPending(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.Status = models.OrderStatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := l.collection().InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePaymentIntent
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (l *Ledger) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := l.collection().FindOne(ctx, bson.M{"paymentIntentId": paymentIntentID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid transitions a pending order to paid. Already-paid orders are
// returned unchanged, so applying either confirmation path twice is a
// no-op. Contact details are backfilled only while the order still holds
// the intent-creation placeholders.
func (l *Ledger) MarkPaid(ctx context.Context, paymentIntentID, customerName, customerEmail string) (*models.Order, error) {
	order, err := l.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusPaid {
		return order, nil
	}

	set := bson.M{
		"status":    models.OrderStatusPaid,
		"updatedAt": time.Now(),
	}
	if order.HasPlaceholderContact() {
		if customerName != "" {
			set["customerName"] = customerName
		}
		if customerEmail != "" {
			set["customerEmail"] = customerEmail
		}
	}

	var updated models.Order
	err = l.collection().FindOneAndUpdate(
		ctx,
		bson.M{"paymentIntentId": paymentIntentID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// InsertPaid records an order reconstructed from processor metadata when
// the ledger never saw the intent. The unique index turns a concurrent
// double-insert into ErrDuplicatePaymentIntent.
func (l *Ledger) InsertPaid(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.Status = models.OrderStatusPaid
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := l.collection().InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePaymentIntent
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// UpdateContact is the best-effort "sync details" amendment. It touches
// only pending orders; an unknown or already-paid intent is a silent
// no-op.
func (l *Ledger) UpdateContact(ctx context.Context, paymentIntentID, customerName, customerEmail string) error {
	_, err := l.collection().UpdateOne(
		ctx,
		bson.M{
			"paymentIntentId": paymentIntentID,
			"status":          models.OrderStatusPending,
		},
		bson.M{"$set": bson.M{
			"customerName":  customerName,
			"customerEmail": customerEmail,
			"updatedAt":     time.Now(),
		}},
	)
	return err
}

func (l *Ledger) List(ctx context.Context, limit int64) ([]models.Order, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := l.collection().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (l *Ledger) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := l.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
