package ports

import (
	"context"

	"order-tracker/internal/features/tracking/domain"
)

// FulfillmentFetcher retrieves the fulfillments of an order from the carrier platform.
// This is a Secondary Port (Driven Port).
type FulfillmentFetcher interface {
	// FetchFulfillments tries each lookup strategy in order and stops at the first that
	// returns fulfillments. An empty result with a Reason is a normal outcome.
	FetchFulfillments(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error)
}
