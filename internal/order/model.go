package order

import (
	"time"

	"fruitbox-be/internal/payment"
)

type Status string

const (
	StatusCreated            Status = "created"
	StatusPaymentAttempted   Status = "payment_attempted"
	StatusConfirmed          Status = "confirmed"
	StatusVerificationFailed Status = "verification_failed"
	StatusExpired            Status = "expired"
)

type DeliveryStatus string

const (
	DeliveryPending      DeliveryStatus = "pending"
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryNotDelivered DeliveryStatus = "not_delivered"
)

type Order struct {
	ProviderOrderID   string
	Receipt           string
	ProviderPaymentID string
	AmountMinor       int64
	Currency          string
	Status            Status
	DeliveryStatus    DeliveryStatus
	CustomerID        string
	CustomerEmail     string
	CustomerName      string
	DeliveryAddress   string
	DeliveryLocation  *payment.Location
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ListFilter struct {
	Status         Status
	DeliveryStatus DeliveryStatus
	Limit          int
	Offset         int
}

// Attendance is the delivery roll-call for one calendar day.
type Attendance struct {
	Date         string
	TotalOrders  int
	Delivered    int
	NotDelivered int
	Orders       []*Order
}

// Analytics aggregates the order book for the dashboard. Revenue counts
// confirmed orders only, in minor units per currency.
type Analytics struct {
	TotalOrders int
	Customers   int
	ByStatus    map[Status]int
	Revenue     map[string]int64
}

// transitions lists the statuses reachable from each status.
// "verified" is not persisted: a matching signature moves an attempted
// order straight to confirmed. A matching signature also revives an
// expired order, since the customer was charged.
var transitions = map[Status][]Status{
	StatusCreated:            {StatusPaymentAttempted, StatusConfirmed, StatusExpired},
	StatusPaymentAttempted:   {StatusConfirmed, StatusVerificationFailed, StatusExpired},
	StatusVerificationFailed: {StatusPaymentAttempted, StatusConfirmed, StatusExpired},
	StatusExpired:            {StatusConfirmed},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusExpired
}

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPaymentAttempted, StatusConfirmed, StatusVerificationFailed, StatusExpired:
		return true
	}
	return false
}

func (d DeliveryStatus) Valid() bool {
	switch d {
	case DeliveryPending, DeliveryDelivered, DeliveryNotDelivered:
		return true
	}
	return false
}
