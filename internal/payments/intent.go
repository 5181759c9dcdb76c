package payments

import "encoding/json"

const (
	IntentStatusSucceeded = "succeeded"

	// MetadataCartItems is the intent metadata key carrying the resolved
	// line-item summary. The processor acts as a secondary durable log:
	// an order can be rebuilt from this value alone if the local write
	// at intent-creation time was lost.
	MetadataCartItems = "cart_items"
)

type BillingDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PaymentMethod struct {
	ID             string         `json:"id"`
	BillingDetails BillingDetails `json:"billing_details"`
}

// Intent mirrors the processor's payment-intent resource. PaymentMethod
// is raw because the API returns either a bare id string or, when
// expanded, the full object.
type Intent struct {
	ID            string            `json:"id"`
	ClientSecret  string            `json:"client_secret"`
	Status        string            `json:"status"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	ReceiptEmail  string            `json:"receipt_email"`
	Metadata      map[string]string `json:"metadata"`
	PaymentMethod json.RawMessage   `json:"payment_method,omitempty"`
}

// ExpandedPaymentMethod returns the payment method object when the intent
// was retrieved with payment_method expanded, nil otherwise.
func (i *Intent) ExpandedPaymentMethod() *PaymentMethod {
	if len(i.PaymentMethod) == 0 || i.PaymentMethod[0] != '{' {
		return nil
	}
	var pm PaymentMethod
	if err := json.Unmarshal(i.PaymentMethod, &pm); err != nil {
		return nil
	}
	return &pm
}

// CartItemSnapshot is one resolved line item as serialized into intent
// metadata. Price is the unit amount in minor currency units.
type CartItemSnapshot struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

func EncodeCartItems(items []CartItemSnapshot) (string, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func DecodeCartItems(raw string) ([]CartItemSnapshot, error) {
	if raw == "" {
		return nil, nil
	}
	var items []CartItemSnapshot
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}
