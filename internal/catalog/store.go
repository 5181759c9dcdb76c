package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// Store is the read-only catalog view used by checkout. Prices returned
// from here are authoritative; client-supplied prices are never used.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// GetProductsByIDs returns the active products matching the given public
// ids. Unknown ids are simply absent from the result.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"id":       bson.M{"$in": ids},
		"isActive": bson.M{"$ne": false},
	}

	cursor, err := s.db.Collection("products").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection("products").FindOne(ctx, bson.M{
		"id":       id,
		"isActive": bson.M{"$ne": false},
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
