package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	productIDIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}},
		Options: options.Index().
			SetName("productId_unique").
			SetUnique(true),
	}

	categoryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetName("category_index"),
	}

	log.Println("EnsureProductIndexes: creating product indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{productIDIndex, categoryIndex})
	if err != nil {
		log.Println("EnsureProductIndexes: index error:", err)
		return err
	}
	return nil
}

// EnsureOrderIndexes creates the unique index on paymentIntentId. This is
// the storage-level backstop that keeps the confirm and webhook paths from
// ever inserting two orders for the same payment intent.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	intentIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "paymentIntentId", Value: 1}},
		Options: options.Index().
			SetName("paymentIntentId_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"paymentIntentId": bson.M{
					"$exists": true,
				},
			}),
	}

	createdAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_index"),
	}

	log.Println("EnsureOrderIndexes: creating paymentIntentId_unique index")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{intentIndex, createdAtIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureAnalyticsIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("analytics_events").Indexes()

	eventTypeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "eventType", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("eventType_createdAt_index"),
	}

	_, err := indexes.CreateOne(ctx, eventTypeIndex)
	if err != nil {
		log.Println("EnsureAnalyticsIndexes: index error:", err)
		return err
	}
	return nil
}
