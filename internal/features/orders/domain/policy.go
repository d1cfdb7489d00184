package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Policy decides how tags and statuses route an order.
type Policy struct {
	// CarrierTag marks orders shipped by an external carrier ("foraneo").
	CarrierTag string
	// LocalTag marks in-house deliveries.
	LocalTag string
	// PartialTriggersCarrier counts "partially fulfilled" as completed.
	PartialTriggersCarrier bool
}

// DefaultPolicy is used when no configuration overrides it.
var DefaultPolicy = Policy{CarrierTag: "foraneo", LocalTag: "local", PartialTriggersCarrier: true}

// IsPaid reports whether the financial status is "paid".
func IsPaid(financialStatus string) bool {
	return strings.EqualFold(strings.TrimSpace(financialStatus), "paid")
}

// HasTag reports whether tags contain tag, ignoring case and accents.
func HasTag(tags, tag string) bool {
	tag = fold(tag)
	return tag != "" && strings.Contains(fold(tags), tag)
}

// IsCompleted reports whether a fulfillment status counts as shipped.
func (p Policy) IsCompleted(fulfillmentStatus string) bool {
	status := strings.ToLower(strings.TrimSpace(fulfillmentStatus))
	if status == "fulfilled" {
		return true
	}
	return p.PartialTriggersCarrier && strings.Contains(status, "partially")
}

// NeedsCarrierLookup reports whether the order should be augmented with carrier tracking.
func (p Policy) NeedsCarrierLookup(o *OrderRecord) bool {
	return o != nil && IsPaid(o.FinancialStatus) && HasTag(o.Tags, p.CarrierTag) && p.IsCompleted(o.FulfillmentStatus)
}

// StageOf derives the customer-facing stage. Local delivery wins over carrier when both tags are present.
func (p Policy) StageOf(o *OrderRecord) Stage {
	switch {
	case o == nil:
		return StageUnknown
	case !IsPaid(o.FinancialStatus):
		return StagePaymentPending
	case HasTag(o.Tags, p.LocalTag):
		if p.IsCompleted(o.FulfillmentStatus) {
			return StageLocalFulfilled
		}
		return StageLocalPreparing
	case HasTag(o.Tags, p.CarrierTag):
		if p.IsCompleted(o.FulfillmentStatus) {
			return StageForaneoShipped
		}
		return StageForaneoPreparing
	}
	return StageUnknown
}

// fold lower-cases s and strips combining marks so "Foráneo" matches "foraneo".
func fold(s string) string {
	// Chained transformers keep state; one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
