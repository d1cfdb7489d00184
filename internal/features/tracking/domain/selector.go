package domain

import "strings"

// Selection is the tracking pair chosen for an order. Both fields may be empty.
type Selection struct {
	TrackingURL       string `json:"tracking_url"`
	FulfillmentNumber string `json:"fulfillment_number"`
}

var preferredStatuses = []string{"success", "open", "closed"}

var preferredStatusFragments = []string{"in_transit", "out_for_delivery", "delivered"}

// IsPreferredStatus reports whether a fulfillment status indicates a live or completed shipment.
func IsPreferredStatus(status string) bool {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return false
	}
	for _, s := range preferredStatuses {
		if status == s {
			return true
		}
	}
	for _, fragment := range preferredStatusFragments {
		if strings.Contains(status, fragment) {
			return true
		}
	}
	return false
}

// SelectTracking picks the best tracking URL and number among fulfillment entries.
//
// Entries without a URL are never chosen. Later entries win ties. In order:
// token match with a preferred status, token match, preferred status, latest entry.
// The returned number falls back to expected when the chosen fulfillment has none.
func SelectTracking(entries []FulfillmentEntry, expected string) Selection {
	candidates := make([]FulfillmentEntry, 0, len(entries))
	for _, e := range entries {
		if e.URL != "" {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Selection{}
	}

	want := ToTokenSet(expected)
	matches := func(e FulfillmentEntry) bool { return want.Intersects(e.Tokens) }
	preferred := func(e FulfillmentEntry) bool { return IsPreferredStatus(e.Status) }

	rules := []func(FulfillmentEntry) bool{
		func(e FulfillmentEntry) bool { return matches(e) && preferred(e) },
		matches,
		preferred,
		func(FulfillmentEntry) bool { return true },
	}

	var chosen FulfillmentEntry
	for _, rule := range rules {
		if e, ok := latest(candidates, rule); ok {
			chosen = e
			break
		}
	}

	number := PickPrimaryTrackingNumber(chosen.Original)
	if number == "" {
		number = strings.TrimSpace(expected)
	}
	return Selection{TrackingURL: chosen.URL, FulfillmentNumber: number}
}

func latest(entries []FulfillmentEntry, rule func(FulfillmentEntry) bool) (FulfillmentEntry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if rule(entries[i]) {
			return entries[i], true
		}
	}
	return FulfillmentEntry{}, false
}
