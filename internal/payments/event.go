package payments

import "encoding/json"

const EventPaymentIntentSucceeded = "payment_intent.succeeded"

// Event is the processor's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// PaymentIntent decodes the event payload as a payment intent.
func (e *Event) PaymentIntent() (*Intent, error) {
	var intent Intent
	if err := json.Unmarshal(e.Data.Object, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
