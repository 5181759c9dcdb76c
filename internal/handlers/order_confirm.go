package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/checkout"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

type confirmOrderRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

type syncOrderRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	Name            string `json:"name"`
	Email           string `json:"email"`
}

// ConfirmOrder handles POST /orders/confirm, the client-initiated
// confirmation path. The webhook often lands first, so "already
// confirmed" is a success, not an anomaly.
func ConfirmOrder(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/confirm"
		defer handlePanic(c, route)

		var req confirmOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "missing paymentIntentId")
			return
		}

		result, err := svc.ConfirmOrder(c.Request.Context(), req.PaymentIntentID)
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrInvalidRequest):
				respondWithError(c, http.StatusBadRequest, route, "missing paymentIntentId")
			case errors.Is(err, checkout.ErrPaymentNotComplete):
				respondWithError(c, http.StatusBadRequest, route, "payment not completed")
			case errors.Is(err, payments.ErrUnreachable):
				respondWithError(c, http.StatusServiceUnavailable, route, "payment service unavailable, try again")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "confirmation failed")
			}
			return
		}

		if result.AlreadyConfirmed {
			log.Printf("[%s] intent %s already confirmed as order %s", route, req.PaymentIntentID, result.OrderID)
		} else {
			log.Printf("[%s] intent %s confirmed as order %s", route, req.PaymentIntentID, result.OrderID)
		}

		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"orderId":          result.OrderID,
			"alreadyConfirmed": result.AlreadyConfirmed,
		})
	}
}

// SyncOrderContact handles POST /orders/sync, the best-effort contact
// upgrade while the payer is still on the details form. Always 200
// unless the payload is malformed; an unknown intent is a silent no-op.
func SyncOrderContact(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/sync"
		defer handlePanic(c, route)

		var req syncOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "missing paymentIntentId")
			return
		}

		if err := svc.SyncContact(c.Request.Context(), req.PaymentIntentID, req.Name, req.Email); err != nil {
			if errors.Is(err, checkout.ErrInvalidRequest) {
				respondWithError(c, http.StatusBadRequest, route, "missing paymentIntentId")
				return
			}
			// Fire-and-forget: a failed sync must never disturb checkout.
			log.Printf("[%s] contact sync failed for intent %s: %v", route, req.PaymentIntentID, err)
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
