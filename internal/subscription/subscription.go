package subscription

import (
	"math"
	"sort"
	"time"

	"fruitbox-be/internal/order"
)

// Period is how long one paid order keeps a subscription running.
const Period = 26 * 24 * time.Hour

const expiringSoonDays = 7

type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// Active describes the subscription bought by a customer's newest order.
type Active struct {
	ProviderOrderID string
	StartDate       time.Time
	EndDate         time.Time
	DaysLeft        int
	Status          Status
}

type Summary struct {
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	TotalOrders   int
	TotalSpent    map[string]int64
	Subscription  Active
}

// DaysLeft returns whole days until the subscription that began at start ends,
// rounding partial days up. It never goes below zero.
func DaysLeft(start, now time.Time) int {
	remaining := start.Add(Period).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

func StatusFor(daysLeft int) Status {
	switch {
	case daysLeft <= 0:
		return StatusExpired
	case daysLeft <= expiringSoonDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// Summarize groups confirmed orders by customer. Customers are keyed by id,
// falling back to email; orders with neither are skipped. Results are ordered
// by subscription end date, soonest first.
func Summarize(orders []*order.Order, now time.Time) []*Summary {
	byCustomer := make(map[string]*Summary)
	var keys []string

	for _, o := range orders {
		if o.Status != order.StatusConfirmed {
			continue
		}
		key := o.CustomerID
		if key == "" {
			key = o.CustomerEmail
		}
		if key == "" {
			continue
		}

		s, ok := byCustomer[key]
		if !ok {
			s = &Summary{
				CustomerID: o.CustomerID,
				TotalSpent: make(map[string]int64),
			}
			byCustomer[key] = s
			keys = append(keys, key)
		}

		s.TotalOrders++
		s.TotalSpent[o.Currency] += o.AmountMinor

		if s.Subscription.ProviderOrderID == "" || o.CreatedAt.After(s.Subscription.StartDate) {
			s.CustomerEmail = o.CustomerEmail
			s.CustomerName = o.CustomerName
			s.Subscription = activeFor(o, now)
		}
	}

	out := make([]*Summary, 0, len(keys))
	for _, k := range keys {
		out = append(out, byCustomer[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Subscription.EndDate.Before(out[j].Subscription.EndDate)
	})
	return out
}

func activeFor(o *order.Order, now time.Time) Active {
	days := DaysLeft(o.CreatedAt, now)
	return Active{
		ProviderOrderID: o.ProviderOrderID,
		StartDate:       o.CreatedAt,
		EndDate:         o.CreatedAt.Add(Period),
		DaysLeft:        days,
		Status:          StatusFor(days),
	}
}
