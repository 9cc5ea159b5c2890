package order

import (
	"context"
	"time"

	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/payment"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// OrderFetcher looks up the provider's view of an order.
type OrderFetcher interface {
	FetchOrder(ctx context.Context, providerOrderID string) (*payment.ProviderOrder, error)
}

// Sweeper settles orders the client abandoned. An unpaid order older than
// ttl is checked with the provider: paid orders are confirmed and orders
// the provider still reports as created expire. Attempted orders and
// orders the provider cannot answer for are retried next pass.
type Sweeper struct {
	svc      Service
	fetcher  OrderFetcher
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(svc Service, fetcher OrderFetcher, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		svc:      svc,
		fetcher:  fetcher,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log := logger.L().With(zap.Duration("ttl", s.ttl), zap.Duration("interval", s.interval))
	log.Info("Order sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Order sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Error("Order sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce processes one batch and returns how many orders were settled.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	stale, err := s.svc.ListStale(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, o := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}

		log := logger.L().With(zap.String("provider_order_id", o.ProviderOrderID))

		po, err := s.fetcher.FetchOrder(ctx, o.ProviderOrderID)
		if err != nil {
			log.Warn("Could not reconcile order with provider", zap.Error(err))
			continue
		}

		var target Status
		switch po.Status {
		case payment.ProviderStatusPaid:
			target = StatusConfirmed
		case payment.ProviderStatusCreated:
			target = StatusExpired
		default:
			log.Debug("Provider order still in progress", zap.String("provider_status", po.Status))
			continue
		}

		if _, err := s.svc.Transition(ctx, o.ProviderOrderID, target, ""); err != nil {
			log.Warn("Failed to settle stale order", zap.String("target", string(target)), zap.Error(err))
			continue
		}
		settled++
	}

	if settled > 0 {
		logger.L().Info("Order sweep finished", zap.Int("settled", settled), zap.Int("candidates", len(stale)))
	}
	return settled, nil
}
