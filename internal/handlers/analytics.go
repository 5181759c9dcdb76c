package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/models"
)

type trackEventRequest struct {
	EventType string         `json:"eventType" binding:"required"`
	Path      string         `json:"path"`
	Metadata  map[string]any `json:"metadata"`
}

// TrackEvent handles POST /analytics/track. Fire-and-forget page and
// interaction events from the storefront.
func TrackEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /analytics/track"
		defer handlePanic(c, route)

		var req trackEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "missing eventType")
			return
		}

		event := models.AnalyticsEvent{
			EventType: strings.TrimSpace(req.EventType),
			Path:      strings.TrimSpace(req.Path),
			Metadata:  req.Metadata,
			CreatedAt: time.Now(),
		}
		if event.Path == "" {
			event.Path = c.Request.URL.Path
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("analytics_events").InsertOne(ctx, event); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// AnalyticsDashboard handles GET /admin/api/analytics: event counts by
// type over the last 30 days.
func AnalyticsDashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/analytics"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"createdAt": bson.M{"$gte": time.Now().AddDate(0, 0, -30)},
			}}},
			{{Key: "$group", Value: bson.M{
				"_id":   "$eventType",
				"count": bson.M{"$sum": 1},
			}}},
			{{Key: "$sort", Value: bson.M{"count": -1}}},
		}

		cursor, err := db.Collection("analytics_events").Aggregate(ctx, pipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		type eventCount struct {
			EventType string `bson:"_id" json:"eventType"`
			Count     int64  `bson:"count" json:"count"`
		}
		counts := make([]eventCount, 0)
		if err := cursor.All(ctx, &counts); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, counts)
	}
}
