package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseluis45re534-cmyk/dentalebook/internal/checkout"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

type checkoutItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest `json:"items" binding:"required"`
	CustomerName  string                `json:"customerName"`
	CustomerEmail string                `json:"customerEmail"`
}

// CreateCheckout handles POST /checkout: resolves server-trusted prices,
// creates the payment intent and returns its client secret.
func CreateCheckout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		lines := make([]checkout.CartLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, checkout.CartLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		resp, err := svc.InitiateCheckout(c.Request.Context(), checkout.CheckoutRequest{
			Lines:         lines,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
		})
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrInvalidRequest):
				respondWithError(c, http.StatusBadRequest, route, "cart is empty or malformed")
			case errors.Is(err, checkout.ErrEmptyCart):
				respondWithError(c, http.StatusBadRequest, route, "no cart items could be resolved, refresh your cart")
			case errors.Is(err, payments.ErrUnreachable):
				respondWithError(c, http.StatusServiceUnavailable, route, "payment service unavailable, try again")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "checkout failed")
			}
			return
		}

		log.Printf("[%s] intent %s created", route, resp.PaymentIntentID)
		c.JSON(http.StatusOK, gin.H{"clientSecret": resp.ClientSecret})
	}
}
