package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ErrUnreachable marks transport-level failures (connection refused,
// timeout) talking to the processor. Callers treat it as transient and
// retryable, never as a payment failure.
var ErrUnreachable = errors.New("payment processor unreachable")

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the processor's payment-intent API.
type Client struct {
	http *resty.Client
}

func NewClient(apiBase, secretKey string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(apiBase).
			SetTimeout(timeout).
			SetAuthToken(secretKey),
	}
}

// CreatePaymentIntent creates an intent for a server-resolved amount in
// minor currency units. Metadata travels with the intent and comes back
// on retrieval and in webhook events.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	form := map[string]string{
		"amount":   strconv.FormatInt(amount, 10),
		"currency": currency,
	}
	form["automatic_payment_methods[enabled]"] = "true"
	for key, value := range metadata {
		form["metadata["+key+"]"] = value
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		SetResult(&Intent{}).
		SetError(&apiError{}).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}
	return resp.Result().(*Intent), nil
}

// RetrievePaymentIntent fetches the authoritative state of an intent with
// the payment method expanded so billing details are available.
func (c *Client) RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("expand[]", "payment_method").
		SetResult(&Intent{}).
		SetError(&apiError{}).
		Get("/v1/payment_intents/" + id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}
	return resp.Result().(*Intent), nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error.Message != "" {
		return fmt.Errorf("processor error (%d): %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return fmt.Errorf("processor error (%d)", resp.StatusCode())
}
