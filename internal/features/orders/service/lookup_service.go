package service

import (
	"context"
	"fmt"
	"strings"

	"order-tracker/internal/core/logger"
	"order-tracker/internal/features/orders/domain"
	"order-tracker/internal/features/orders/ports"
	trackingdomain "order-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// LookupService resolves a customer's order by phone and order code.
type LookupService struct {
	store    ports.OrderStore
	resolver ports.TrackingResolver
	policy   domain.Policy
}

// NewLookupService creates a new instance of LookupService.
// A nil resolver disables carrier augmentation.
func NewLookupService(store ports.OrderStore, resolver ports.TrackingResolver, policy domain.Policy) *LookupService {
	return &LookupService{
		store:    store,
		resolver: resolver,
		policy:   policy,
	}
}

// Lookup validates the request, reads the latest matching order and, for carrier
// shipments that are fulfilled, merges the best tracking data from the carrier.
// Carrier failures never fail the lookup.
func (s *LookupService) Lookup(ctx context.Context, phone, orderCode string) (*domain.LookupResult, error) {
	phone = domain.NormalizePhone(phone)
	orderCode = domain.NormalizeOrderCode(orderCode)

	if err := domain.ValidateRequest(phone, orderCode); err != nil {
		return nil, err
	}

	if missing := s.store.MissingConfig(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, strings.Join(missing, ", "))
	}

	order, err := s.store.FindLatest(ctx, orderCode, phone)
	if err != nil {
		logger.Named("lookup").Error("Order store query failed",
			zap.String("order_code", orderCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if order == nil {
		return &domain.LookupResult{Found: false}, nil
	}

	order.TrackingURL = trackingdomain.NormalizeURL(order.TrackingURL)

	if s.resolver != nil && s.policy.NeedsCarrierLookup(order) {
		s.augment(ctx, order)
	}

	return &domain.LookupResult{
		Found: true,
		Order: order,
		Stage: s.policy.StageOf(order),
	}, nil
}

// augment merges carrier tracking into order. Store values are kept unless the carrier offers a non-empty replacement.
func (s *LookupService) augment(ctx context.Context, order *domain.OrderRecord) {
	res, err := s.resolver.Resolve(ctx, trackingdomain.ResolveRequest{
		CarrierOrderID: trackingdomain.CarrierOrderIDFrom(order.CarrierOrderID),
		OrderCode:      order.OrderName,
		ExpectedNumber: order.FulfillmentNumber,
	})

	if res != nil {
		order.TrackingLookup = res.Lookup
	}
	if err != nil {
		if order.TrackingLookup == nil {
			order.TrackingLookup = &trackingdomain.TrackingLookup{Attempted: true}
		}
		if order.TrackingLookup.Reason == "" {
			order.TrackingLookup.Reason = err.Error()
		}
		return
	}
	if res == nil {
		return
	}

	if url := trackingdomain.NormalizeURL(res.Selection.TrackingURL); url != "" {
		order.TrackingURL = url
	}
	if number := strings.TrimSpace(res.Selection.FulfillmentNumber); number != "" {
		order.FulfillmentNumber = number
	}
}
