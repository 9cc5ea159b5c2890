package payment

import "strings"

// Provider-side order statuses as reported by Razorpay.
const (
	ProviderStatusCreated   = "created"
	ProviderStatusAttempted = "attempted"
	ProviderStatusPaid      = "paid"
)

type OrderRequest struct {
	Amount   float64
	Currency string
	Customer Customer
}

// Customer is optional storefront context attached to the order record.
type Customer struct {
	ID       string
	Email    string
	Name     string
	Address  string
	Location *Location
}

// Location is a delivery point in decimal degrees.
type Location struct {
	Lat float64
	Lng float64
}

func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

type ProviderOrder struct {
	ProviderOrderID string
	Receipt         string
	AmountMinor     int64
	Currency        string
	Status          string
	KeyID           string
}

type VerificationRequest struct {
	OrderID   string
	PaymentID string
	Signature string
}

type VerificationResult struct {
	Verified bool
}

func (r VerificationRequest) validate() error {
	switch {
	case strings.TrimSpace(r.OrderID) == "":
		return newValidationError("razorpayOrderId", "razorpayOrderId is required")
	case strings.TrimSpace(r.PaymentID) == "":
		return newValidationError("razorpayPaymentId", "razorpayPaymentId is required")
	case strings.TrimSpace(r.Signature) == "":
		return newValidationError("razorpaySignature", "razorpaySignature is required")
	}
	return nil
}
