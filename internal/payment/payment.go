// internal/payment/payment.go
package payment

import (
	"context"
)

// Gateway is the provider-side order API.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*ProviderOrder, error)
	FetchOrder(ctx context.Context, providerOrderID string) (*ProviderOrder, error)
}

// Recorder receives order lifecycle hand-offs. It is the order record
// store's entry point; the payment service never owns persisted state.
type Recorder interface {
	RecordCreated(ctx context.Context, order *ProviderOrder, customer Customer) error
	RecordVerification(ctx context.Context, providerOrderID, providerPaymentID string, verified bool) error
}
