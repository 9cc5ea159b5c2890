package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fruitbox-be/internal/events"
	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/metrics"
	"fruitbox-be/internal/payment"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	attendanceLayout = "2006-01-02"
)

// Service is the order record store. It implements payment.Recorder and
// backs the admin dashboard.
type Service interface {
	RecordCreated(ctx context.Context, po *payment.ProviderOrder, customer payment.Customer) error
	RecordVerification(ctx context.Context, providerOrderID, providerPaymentID string, verified bool) error
	Transition(ctx context.Context, providerOrderID string, target Status, providerPaymentID string) (*Order, error)

	Get(ctx context.Context, providerOrderID string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	ConfirmedOrders(ctx context.Context) ([]*Order, error)
	ListStale(ctx context.Context, createdBefore time.Time, limit int) ([]*Order, error)
	UpdateDeliveryStatus(ctx context.Context, providerOrderID string, status DeliveryStatus) (*Order, error)
	Attendance(ctx context.Context, day time.Time) (*Attendance, error)
	Analytics(ctx context.Context) (*Analytics, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &service{repo: repo, publisher: publisher}
}

var _ payment.Recorder = (*service)(nil)

func (s *service) RecordCreated(ctx context.Context, po *payment.ProviderOrder, customer payment.Customer) error {
	o := &Order{
		ProviderOrderID:  po.ProviderOrderID,
		Receipt:          po.Receipt,
		AmountMinor:      po.AmountMinor,
		Currency:         po.Currency,
		Status:           StatusCreated,
		DeliveryStatus:   DeliveryPending,
		CustomerID:       customer.ID,
		CustomerEmail:    customer.Email,
		CustomerName:     customer.Name,
		DeliveryAddress:  customer.Address,
		DeliveryLocation: customer.Location,
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return fmt.Errorf("save order %s: %w", po.ProviderOrderID, err)
	}

	logger.FromCtx(ctx).Info("Order recorded",
		zap.String("provider_order_id", o.ProviderOrderID),
		zap.Int64("amount_minor", o.AmountMinor),
	)
	metrics.OrderTransitions.WithLabelValues(string(StatusCreated)).Inc()
	return nil
}

// RecordVerification moves the order through payment_attempted to its
// verdict. Repeating it for a confirmed order is a no-op. An expired order
// is confirmed by a matching signature and otherwise left alone.
func (s *service) RecordVerification(ctx context.Context, providerOrderID, providerPaymentID string, verified bool) error {
	log := logger.FromCtx(ctx).With(
		zap.String("provider_order_id", providerOrderID),
		zap.Bool("verified", verified),
	)

	o, err := s.repo.GetByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return err
	}

	if o.Status == StatusExpired && verified {
		log.Warn("Verified payment for expired order, confirming")
		_, err = s.transition(ctx, o, StatusConfirmed, providerPaymentID)
		return err
	}

	if o.Status.Terminal() {
		log.Info("Order already settled, ignoring verification", zap.String("status", string(o.Status)))
		return nil
	}

	if o.Status != StatusPaymentAttempted {
		if _, err := s.transition(ctx, o, StatusPaymentAttempted, providerPaymentID); err != nil {
			return err
		}
	}

	target := StatusVerificationFailed
	if verified {
		target = StatusConfirmed
	}
	_, err = s.transition(ctx, o, target, providerPaymentID)
	return err
}

func (s *service) Transition(ctx context.Context, providerOrderID string, target Status, providerPaymentID string) (*Order, error) {
	o, err := s.repo.GetByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, target, providerPaymentID)
}

// transition persists o.Status -> target and publishes the change.
// o is updated in place on success.
func (s *service) transition(ctx context.Context, o *Order, target Status, providerPaymentID string) (*Order, error) {
	if o.Status == target {
		return o, nil
	}
	if !CanTransition(o.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, o.ProviderOrderID, o.Status, target, providerPaymentID); err != nil {
		return nil, fmt.Errorf("update order %s: %w", o.ProviderOrderID, err)
	}

	from := o.Status
	o.Status = target
	if providerPaymentID != "" {
		o.ProviderPaymentID = providerPaymentID
	}
	o.UpdatedAt = time.Now().UTC()

	logger.FromCtx(ctx).Info("Order status changed",
		zap.String("provider_order_id", o.ProviderOrderID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	metrics.OrderTransitions.WithLabelValues(string(target)).Inc()

	if target != StatusPaymentAttempted {
		s.publish(ctx, o)
	}
	return o, nil
}

func (s *service) publish(ctx context.Context, o *Order) {
	evt := events.NewOrderStatusEvent(o.ProviderOrderID, string(o.Status), o.ProviderPaymentID, o.AmountMinor, o.Currency)
	if err := s.publisher.PublishOrderStatus(ctx, evt); err != nil {
		logger.FromCtx(ctx).Warn("Failed to publish order status event",
			zap.String("provider_order_id", o.ProviderOrderID),
			zap.Error(err),
		)
	}
}

func (s *service) Get(ctx context.Context, providerOrderID string) (*Order, error) {
	return s.repo.GetByProviderOrderID(ctx, providerOrderID)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.DeliveryStatus != "" && !filter.DeliveryStatus.Valid() {
		return nil, ErrInvalidDeliveryStatus
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ConfirmedOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.ListByStatus(ctx, StatusConfirmed)
}

var staleStatuses = []Status{StatusCreated, StatusPaymentAttempted, StatusVerificationFailed}

// ListStale returns unpaid orders created before the cutoff, including
// ones left in payment_attempted by an interrupted verification.
func (s *service) ListStale(ctx context.Context, createdBefore time.Time, limit int) ([]*Order, error) {
	return s.repo.ListStale(ctx, staleStatuses, createdBefore, limit)
}

func (s *service) UpdateDeliveryStatus(ctx context.Context, providerOrderID string, status DeliveryStatus) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidDeliveryStatus
	}

	o, err := s.repo.GetByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusConfirmed {
		return nil, ErrDeliveryNotAllowed
	}

	if err := s.repo.UpdateDeliveryStatus(ctx, providerOrderID, status); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update delivery status for %s: %w", providerOrderID, err)
	}

	o.DeliveryStatus = status
	o.UpdatedAt = time.Now().UTC()

	logger.FromCtx(ctx).Info("Delivery status updated",
		zap.String("provider_order_id", providerOrderID),
		zap.String("delivery_status", string(status)),
	)
	return o, nil
}

// Attendance counts confirmed orders created on day (UTC) by delivery outcome.
// Orders without a delivery mark count as not delivered.
func (s *service) Attendance(ctx context.Context, day time.Time) (*Attendance, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	orders, err := s.repo.ListCreatedBetween(ctx, start, start.AddDate(0, 0, 1), StatusConfirmed)
	if err != nil {
		return nil, err
	}

	a := &Attendance{
		Date:        start.Format(attendanceLayout),
		TotalOrders: len(orders),
		Orders:      orders,
	}
	for _, o := range orders {
		if o.DeliveryStatus == DeliveryDelivered {
			a.Delivered++
		} else {
			a.NotDelivered++
		}
	}
	return a, nil
}

func (s *service) Analytics(ctx context.Context) (*Analytics, error) {
	return s.repo.Analytics(ctx)
}
