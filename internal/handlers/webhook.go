package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/checkout"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

// PaymentWebhook handles POST /webhooks/payment, the processor's
// asynchronous delivery. The signature gate is hard: an unverifiable
// delivery is rejected before anything touches the ledger. A failed
// ledger write returns 5xx so the processor redelivers; the handler
// stays idempotent under redelivery.
func PaymentWebhook(svc *checkout.Service, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /webhooks/payment"
		defer handlePanic(c, route)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "unreadable body")
			return
		}

		signature := c.GetHeader("Stripe-Signature")
		if err := payments.VerifySignature(payload, signature, webhookSecret); err != nil {
			log.Printf("[%s] [SECURITY] rejected delivery with invalid signature from %s", route, c.ClientIP())
			respondWithError(c, http.StatusBadRequest, route, "invalid signature")
			return
		}

		event, err := payments.ParseEvent(payload)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "malformed event")
			return
		}

		if event.Type != payments.EventPaymentIntentSucceeded {
			// Other event types are acknowledged and ignored.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		intent, err := event.PaymentIntent()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "malformed event payload")
			return
		}

		orderID, err := svc.ApplyPaymentSucceeded(c.Request.Context(), intent)
		if err != nil {
			// 5xx asks the processor to redeliver; that redelivery is
			// the recovery path for a ledger outage.
			respondWithError(c, http.StatusInternalServerError, route, "event processing failed")
			return
		}

		log.Printf("[%s] intent %s settled as order %s", route, intent.ID, orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
