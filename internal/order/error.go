package order

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrStatusConflict        = errors.New("order status changed concurrently")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrInvalidDeliveryStatus = errors.New("invalid delivery status")
	ErrDeliveryNotAllowed    = errors.New("only confirmed orders can be delivered")
)
