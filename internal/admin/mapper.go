package admin

import (
	"time"

	"fruitbox-be/internal/order"
	"fruitbox-be/internal/payment"
	"fruitbox-be/internal/subscription"
)

type OrderResponse struct {
	OrderID        string    `json:"orderId"`
	Receipt        string    `json:"receipt"`
	PaymentID      string    `json:"paymentId,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	DeliveryStatus string    `json:"deliveryStatus"`
	CustomerID     string    `json:"customerId,omitempty"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	CustomerName   string    `json:"customerName,omitempty"`
	Address        string    `json:"address,omitempty"`
	Location       *Location `json:"deliveryLocation,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AnalyticsResponse backs the dashboard's analytics tab. Revenue is in minor
// units of each currency.
type AnalyticsResponse struct {
	TotalOrders int              `json:"totalOrders"`
	Customers   int              `json:"totalUsers"`
	ByStatus    map[string]int   `json:"byStatus"`
	Revenue     map[string]int64 `json:"totalRevenue"`
}

type SubscriptionResponse struct {
	OrderID   string    `json:"orderId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	DaysLeft  int       `json:"daysLeft"`
	Status    string    `json:"status"`
}

type CustomerSummaryResponse struct {
	CustomerID         string               `json:"customerId,omitempty"`
	CustomerEmail      string               `json:"customerEmail,omitempty"`
	CustomerName       string               `json:"customerName,omitempty"`
	TotalOrders        int                  `json:"totalOrders"`
	TotalSpent         map[string]int64     `json:"totalSpent"`
	ActiveSubscription SubscriptionResponse `json:"activeSubscription"`
}

type AttendanceResponse struct {
	Date         string           `json:"date"`
	TotalOrders  int              `json:"totalOrders"`
	Delivered    int              `json:"delivered"`
	NotDelivered int              `json:"notDelivered"`
	Orders       []*OrderResponse `json:"orders"`
}

func MapOrder(o *order.Order) *OrderResponse {
	return &OrderResponse{
		OrderID:        o.ProviderOrderID,
		Receipt:        o.Receipt,
		PaymentID:      o.ProviderPaymentID,
		Amount:         o.AmountMinor,
		Currency:       o.Currency,
		Status:         string(o.Status),
		DeliveryStatus: string(o.DeliveryStatus),
		CustomerID:     o.CustomerID,
		CustomerEmail:  o.CustomerEmail,
		CustomerName:   o.CustomerName,
		Address:        o.DeliveryAddress,
		Location:       mapLocation(o.DeliveryLocation),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func mapLocation(l *payment.Location) *Location {
	if l == nil {
		return nil
	}
	return &Location{Lat: l.Lat, Lng: l.Lng}
}

func MapOrders(orders []*order.Order) []*OrderResponse {
	res := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, MapOrder(o))
	}
	return res
}

func MapSummaries(summaries []*subscription.Summary) []*CustomerSummaryResponse {
	res := make([]*CustomerSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		res = append(res, &CustomerSummaryResponse{
			CustomerID:    s.CustomerID,
			CustomerEmail: s.CustomerEmail,
			CustomerName:  s.CustomerName,
			TotalOrders:   s.TotalOrders,
			TotalSpent:    s.TotalSpent,
			ActiveSubscription: SubscriptionResponse{
				OrderID:   s.Subscription.ProviderOrderID,
				StartDate: s.Subscription.StartDate,
				EndDate:   s.Subscription.EndDate,
				DaysLeft:  s.Subscription.DaysLeft,
				Status:    string(s.Subscription.Status),
			},
		})
	}
	return res
}

func MapAttendance(a *order.Attendance) *AttendanceResponse {
	return &AttendanceResponse{
		Date:         a.Date,
		TotalOrders:  a.TotalOrders,
		Delivered:    a.Delivered,
		NotDelivered: a.NotDelivered,
		Orders:       MapOrders(a.Orders),
	}
}

func MapAnalytics(a *order.Analytics) *AnalyticsResponse {
	byStatus := make(map[string]int, len(a.ByStatus))
	for s, n := range a.ByStatus {
		byStatus[string(s)] = n
	}
	revenue := a.Revenue
	if revenue == nil {
		revenue = map[string]int64{}
	}
	return &AnalyticsResponse{
		TotalOrders: a.TotalOrders,
		Customers:   a.Customers,
		ByStatus:    byStatus,
		Revenue:     revenue,
	}
}
