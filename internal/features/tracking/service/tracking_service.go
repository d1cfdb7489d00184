package service

import (
	"context"
	"time"

	"order-tracker/internal/core/logger"
	"order-tracker/internal/features/tracking/domain"
	"order-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// TrackingService resolves the best tracking URL and number for an order from its carrier fulfillments.
type TrackingService struct {
	fetcher ports.FulfillmentFetcher
	now     func() time.Time
}

// NewTrackingService creates a new TrackingService with the given fetcher.
func NewTrackingService(fetcher ports.FulfillmentFetcher) *TrackingService {
	return &TrackingService{
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Resolve fetches the order's fulfillments and selects a tracking pair.
//
// The returned Resolution is never nil and always carries a lookup record. A fetch
// error is returned alongside it; the record's Reason describes the failure.
func (s *TrackingService) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.Resolution, error) {
	lookup := &domain.TrackingLookup{
		Attempted:      true,
		CarrierOrderID: req.CarrierOrderID,
		CheckedAt:      s.now().UTC(),
	}
	res := &domain.Resolution{Lookup: lookup}

	result, err := s.fetcher.FetchFulfillments(ctx, domain.FetchRequest{
		CarrierOrderID: req.CarrierOrderID,
		OrderCode:      req.OrderCode,
	})
	if result != nil {
		lookup.Attempts = result.Attempts
		lookup.Strategy = result.Strategy
		lookup.Reason = result.Reason
		lookup.FulfillmentsFound = len(result.Fulfillments)
	}
	if err != nil {
		lookup.Reason = err.Error()
		logger.Named("tracking").Warn("Carrier lookup failed",
			zap.String("carrier_order_id", req.CarrierOrderID),
			zap.String("order_code", req.OrderCode),
			zap.Error(err),
		)
		return res, err
	}
	if result == nil || len(result.Fulfillments) == 0 {
		return res, nil
	}

	entries := domain.NewFulfillmentEntries(result.Fulfillments)
	res.Selection = domain.SelectTracking(entries, req.ExpectedNumber)
	lookup.Resolved = res.Selection.TrackingURL != ""
	if !lookup.Resolved {
		lookup.Reason = domain.ReasonNoTrackingURL
	}

	return res, nil
}
