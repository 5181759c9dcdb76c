package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. ProductID is the stable public identifier
// used by carts and order snapshots; the Mongo _id is internal only.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ProductID     int64              `bson:"id" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CurrentPrice  float64            `bson:"currentPrice" json:"currentPrice"`
	OriginalPrice *float64           `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	IsOnSale      bool               `bson:"isOnSale" json:"isOnSale"`
	Category      string             `bson:"category" json:"category"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	URL           string             `bson:"url,omitempty" json:"url,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
