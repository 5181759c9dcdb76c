package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
)

type adminProductRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	CurrentPrice  float64  `json:"currentPrice" binding:"required,gt=0"`
	OriginalPrice *float64 `json:"originalPrice"`
	Category      string   `json:"category" binding:"required"`
	ImageURL      string   `json:"imageUrl"`
	URL           string   `json:"url"`
	IsActive      *bool    `json:"isActive"`
}

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
		cursor, err := db.Collection("products").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req adminProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		nextID, err := nextProductID(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		product := models.Product{
			ProductID:     nextID,
			Title:         strings.TrimSpace(req.Title),
			Description:   strings.TrimSpace(req.Description),
			CurrentPrice:  req.CurrentPrice,
			OriginalPrice: req.OriginalPrice,
			IsOnSale:      req.OriginalPrice != nil && *req.OriginalPrice > req.CurrentPrice,
			Category:      strings.TrimSpace(req.Category),
			ImageURL:      strings.TrimSpace(req.ImageURL),
			URL:           strings.TrimSpace(req.URL),
			IsActive:      isActive,
			CreatedAt:     time.Now(),
		}

		if _, err := db.Collection("products").InsertOne(ctx, product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		var req adminProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		set := bson.M{
			"title":        strings.TrimSpace(req.Title),
			"description":  strings.TrimSpace(req.Description),
			"currentPrice": req.CurrentPrice,
			"category":     strings.TrimSpace(req.Category),
			"imageUrl":     strings.TrimSpace(req.ImageURL),
			"url":          strings.TrimSpace(req.URL),
			"isOnSale":     req.OriginalPrice != nil && *req.OriginalPrice > req.CurrentPrice,
		}
		if req.OriginalPrice != nil {
			set["originalPrice"] = *req.OriginalPrice
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

// nextProductID allocates the next public id. The back office is a
// single-admin tool, so max+1 is sufficient; the unique index on id
// rejects the rare clash.
func nextProductID(ctx context.Context, db *mongo.Database) (int64, error) {
	var last models.Product
	err := db.Collection("products").FindOne(
		ctx,
		bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}}),
	).Decode(&last)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.ProductID + 1, nil
}
