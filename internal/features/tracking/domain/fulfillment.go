package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fulfillment is one carrier fulfillment object as decoded from any payload shape
// (REST or GraphQL, snake_case or camelCase).
type Fulfillment map[string]any

// TrackingEntry is a uniform view of a single tracking reference inside a fulfillment.
type TrackingEntry struct {
	Number  string `json:"number,omitempty"`
	URL     string `json:"url,omitempty"`
	Company string `json:"company,omitempty"`
}

// FulfillmentEntry is the normalized form of a fulfillment used for selection.
type FulfillmentEntry struct {
	// Status is the lowercased fulfillment or shipment status.
	Status string
	// Tokens holds every tracking number of the fulfillment in token form.
	Tokens TokenSet
	// URL is the first resolvable tracking URL, or "".
	URL string
	// Original is kept to re-extract the primary tracking number.
	Original Fulfillment
}

// ExtractTrackingEntries flattens a fulfillment into tracking entries.
//
// tracking_info/trackingInfo sub-objects are read first. Only when they produce
// nothing are the direct tracking_number(s)/tracking_url(s) fields paired up
// positionally. An entry survives if it has a number or a resolvable URL.
func ExtractTrackingEntries(f Fulfillment) []TrackingEntry {
	if f == nil {
		return nil
	}
	fallbackCompany := firstString(f, "tracking_company", "trackingCompany")

	var entries []TrackingEntry
	for _, info := range objects(first(f, "tracking_info", "trackingInfo")) {
		entry := TrackingEntry{
			Number:  stringify(info["number"]),
			URL:     NormalizeURL(firstString(info, "url", "tracking_url", "trackingUrl")),
			Company: stringify(info["company"]),
		}
		if entry.Number == "" && entry.URL == "" {
			continue
		}
		if entry.Company == "" {
			entry.Company = fallbackCompany
		}
		entries = append(entries, entry)
	}
	if len(entries) > 0 {
		return entries
	}

	numbers := stringList(f, "tracking_numbers", "trackingNumbers", "tracking_number", "trackingNumber")
	urls := stringList(f, "tracking_urls", "trackingUrls", "tracking_url", "trackingUrl")

	size := len(numbers)
	if len(urls) > size {
		size = len(urls)
	}
	for i := 0; i < size; i++ {
		entry := TrackingEntry{
			Number:  strings.TrimSpace(at(numbers, i)),
			URL:     NormalizeURL(at(urls, i)),
			Company: fallbackCompany,
		}
		if entry.Number == "" && entry.URL == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// PickPrimaryTrackingNumber returns the main tracking number of a fulfillment, or "".
func PickPrimaryTrackingNumber(f Fulfillment) string {
	for _, entry := range ExtractTrackingEntries(f) {
		if entry.Number != "" {
			return entry.Number
		}
	}
	if n := firstString(f, "tracking_number", "trackingNumber"); n != "" {
		return n
	}
	for _, key := range []string{"tracking_numbers", "trackingNumbers"} {
		if list, ok := f[key].([]any); ok && len(list) > 0 {
			if n := stringify(list[0]); n != "" {
				return n
			}
		}
	}
	return ""
}

// NewFulfillmentEntry normalizes a raw fulfillment for the selector.
func NewFulfillmentEntry(f Fulfillment) FulfillmentEntry {
	entry := FulfillmentEntry{
		Status:   strings.ToLower(firstString(f, "status", "shipment_status", "shipmentStatus", "displayStatus")),
		Original: f,
	}
	for _, te := range ExtractTrackingEntries(f) {
		for _, token := range ToTokenSet(te.Number) {
			entry.Tokens = entry.Tokens.Add(token)
		}
		if entry.URL == "" {
			entry.URL = te.URL
		}
	}
	return entry
}

// NewFulfillmentEntries normalizes fulfillments in arrival order.
func NewFulfillmentEntries(fs []Fulfillment) []FulfillmentEntry {
	entries := make([]FulfillmentEntry, 0, len(fs))
	for _, f := range fs {
		entries = append(entries, NewFulfillmentEntry(f))
	}
	return entries
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringify(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// objects accepts a single object or an array of objects.
func objects(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case Fulfillment:
		return []map[string]any{t}
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

// stringList reads the first key holding a non-empty value; arrays and scalars both yield a list.
func stringList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		var out []string
		switch t := m[k].(type) {
		case []any:
			for _, item := range t {
				out = append(out, stringify(item))
			}
		case []string:
			out = append(out, t...)
		default:
			if s := stringify(t); s != "" {
				out = []string{s}
			}
		}
		if hasValue(out) {
			return out
		}
	}
	return nil
}

func hasValue(list []string) bool {
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// at returns list[i], falling back to the first non-empty element for ragged lists.
func at(list []string, i int) string {
	if i < len(list) && strings.TrimSpace(list[i]) != "" {
		return list[i]
	}
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}
