package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrCarrierUnavailable is returned when every fetch strategy failed at the transport level.
var ErrCarrierUnavailable = errors.New("carrier unavailable")

// Fetch strategies, in the order they are tried.
const (
	StrategyRESTFulfillments   = "rest_fulfillments"
	StrategyRESTOrder          = "rest_order"
	StrategyGraphQLOrderByID   = "graphql_order_by_id"
	StrategyGraphQLOrderSearch = "graphql_order_search"
)

// Reasons recorded when a lookup produced nothing to merge.
const (
	ReasonMissingCredentials = "missing carrier credentials"
	ReasonMissingOrderID     = "missing carrier order id"
	ReasonOrderNotFound      = "order not found"
	ReasonNoFulfillments     = "order has no fulfillments"
	ReasonAPIErrors          = "carrier api reported errors"
	ReasonNoTrackingURL      = "no fulfillment with a tracking url"
)

// Attempt records the outcome of one fetch strategy.
type Attempt struct {
	Strategy     string   `json:"strategy"`
	Status       int      `json:"status,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	OrderFound   bool     `json:"order_found"`
	Fulfillments int      `json:"fulfillments"`
	Error        string   `json:"error,omitempty"`
	Skipped      bool     `json:"skipped,omitempty"`
}

// TransportFailed reports whether the attempt never got a usable 2xx response.
func (a Attempt) TransportFailed() bool {
	if a.Skipped {
		return false
	}
	return a.Status < 200 || a.Status > 299
}

// FetchRequest identifies the order on the carrier platform.
type FetchRequest struct {
	CarrierOrderID string
	OrderCode      string
}

// FetchResult holds the fulfillments of the first strategy that returned any.
type FetchResult struct {
	Fulfillments   []Fulfillment
	Strategy       string
	Reason         string
	Attempts       []Attempt
	OrderFound     bool
	CarrierOrderID string
}

// ResolveRequest asks for the best tracking data of one order.
type ResolveRequest struct {
	CarrierOrderID string
	OrderCode      string
	// ExpectedNumber is the tracking number already on file.
	ExpectedNumber string
}

// TrackingLookup is the diagnostic record attached to an order when carrier augmentation ran.
type TrackingLookup struct {
	Attempted         bool      `json:"attempted"`
	CarrierOrderID    string    `json:"carrier_order_id"`
	FulfillmentsFound int       `json:"fulfillments_found"`
	Resolved          bool      `json:"resolved"`
	Strategy          string    `json:"strategy,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	Attempts          []Attempt `json:"attempts,omitempty"`
	CheckedAt         time.Time `json:"checked_at"`
}

// Resolution is the selected tracking pair plus its diagnostics.
type Resolution struct {
	Selection Selection
	Lookup    *TrackingLookup
}

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	digitRun   = regexp.MustCompile(`\d+`)
)

// CarrierOrderIDFrom derives the numeric carrier order id from a stored identifier.
// Global ids such as "gid://shopify/Order/123" yield their trailing digits.
func CarrierOrderIDFrom(raw string) string {
	raw = strings.TrimSpace(raw)
	if digitsOnly.MatchString(raw) {
		return raw
	}
	runs := digitRun.FindAllString(raw, -1)
	if len(runs) == 0 {
		return ""
	}
	return runs[len(runs)-1]
}
