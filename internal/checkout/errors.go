package checkout

import "errors"

var (
	// ErrInvalidRequest covers empty or malformed cart payloads.
	ErrInvalidRequest = errors.New("invalid checkout request")

	// ErrEmptyCart means every requested product id failed to resolve
	// against the catalog, usually stale client-side cart state.
	ErrEmptyCart = errors.New("no cart items could be resolved")

	// ErrPaymentNotComplete means the processor does not (yet) report
	// the intent as succeeded. The order stays pending; the client may
	// retry or the webhook will finish the job.
	ErrPaymentNotComplete = errors.New("payment not completed")
)
