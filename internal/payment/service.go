package payment

import (
	"context"
	"errors"
	"fmt"

	"fruitbox-be/internal/config"
	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/metrics"
	"fruitbox-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*ProviderOrder, error)
	VerifyPayment(ctx context.Context, req VerificationRequest) (*VerificationResult, error)
}

type service struct {
	cfg      *config.RazorpayConfig
	gateway  Gateway
	recorder Recorder
	receipt  func() string
}

// NewService wires the payment flow. recorder may be nil when no order
// store is configured.
func NewService(cfg *config.RazorpayConfig, gateway Gateway, recorder Recorder) Service {
	return &service{
		cfg:      cfg,
		gateway:  gateway,
		recorder: recorder,
		receipt:  utils.GenerateReceipt,
	}
}

func (s *service) CreateOrder(ctx context.Context, req OrderRequest) (*ProviderOrder, error) {
	currency := NormalizeCurrency(req.Currency)
	log := logger.FromCtx(ctx).With(
		zap.Float64("amount", req.Amount),
		zap.String("currency", currency),
	)

	amountMinor, err := ToMinorUnits(req.Amount, currency)
	if err != nil {
		log.Info("Rejected order request", zap.Error(err))
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeValidation).Inc()
		return nil, err
	}
	if loc := req.Customer.Location; loc != nil && !loc.Valid() {
		err := newValidationError("customer.location", "location is out of range")
		log.Info("Rejected order request", zap.Error(err))
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeValidation).Inc()
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, amountMinor, currency, s.receipt())
	if err != nil {
		log.Error("Failed to create provider order", zap.Error(err))
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeGatewayError).Inc()
		if !errors.Is(err, ErrGateway) {
			err = fmt.Errorf("%w: %v", ErrGateway, err)
		}
		return nil, err
	}
	order.KeyID = s.cfg.KeyID

	metrics.OrdersCreated.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("Provider order created",
		zap.String("provider_order_id", order.ProviderOrderID),
		zap.Int64("amount_minor", order.AmountMinor),
	)

	// The provider has already committed the order, so a store failure
	// must not hide it from the client. The sweeper reconciles later.
	if s.recorder != nil {
		if err := s.recorder.RecordCreated(ctx, order, req.Customer); err != nil {
			log.Warn("Failed to record created order",
				zap.String("provider_order_id", order.ProviderOrderID),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

func (s *service) VerifyPayment(ctx context.Context, req VerificationRequest) (*VerificationResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider_order_id", req.OrderID),
		zap.String("provider_payment_id", req.PaymentID),
	)

	if err := req.validate(); err != nil {
		log.Info("Rejected verification request", zap.Error(err))
		metrics.Verifications.WithLabelValues(metrics.OutcomeValidation).Inc()
		return nil, err
	}

	if s.cfg == nil || s.cfg.KeySecret == "" {
		log.Error("Razorpay key secret is not configured")
		metrics.Verifications.WithLabelValues(metrics.OutcomeServiceError).Inc()
		return nil, ErrServiceMisconfigured
	}

	verified := VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.cfg.KeySecret)
	if verified {
		metrics.Verifications.WithLabelValues(metrics.OutcomeVerified).Inc()
		log.Info("Payment signature verified")
	} else {
		metrics.Verifications.WithLabelValues(metrics.OutcomeMismatch).Inc()
		log.Warn("Payment signature mismatch")
	}

	if s.recorder != nil {
		if err := s.recorder.RecordVerification(ctx, req.OrderID, req.PaymentID, verified); err != nil {
			log.Warn("Failed to record verification result", zap.Bool("verified", verified), zap.Error(err))
		}
	}

	return &VerificationResult{Verified: verified}, nil
}
