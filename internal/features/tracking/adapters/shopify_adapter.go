package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"order-tracker/internal/core/config"
	"order-tracker/internal/core/httpclient"
	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/proxy"
	"order-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

const accessTokenHeader = "X-Shopify-Access-Token"

// ShopifyAdapter implements the FulfillmentFetcher interface using the Shopify Admin REST and GraphQL APIs.
type ShopifyAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the shop domain and credentials.
	config config.ShopifyConfig
}

// NewShopifyAdapter creates a new instance of ShopifyAdapter.
func NewShopifyAdapter(cfg config.ShopifyConfig, proxySettings proxy.Settings) *ShopifyAdapter {
	return &ShopifyAdapter{
		client: httpclient.New(httpclient.Options{
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
			Burst:         cfg.RateBurst,
			Proxy:         proxySettings,
		}),
		config: cfg,
	}
}

// strategy is one way of locating an order's fulfillments.
type strategy struct {
	name    string
	applies func(domain.FetchRequest) bool
	run     func(context.Context, domain.FetchRequest) ([]domain.Fulfillment, domain.Attempt)
}

func (a *ShopifyAdapter) strategies() []strategy {
	byID := func(r domain.FetchRequest) bool { return r.CarrierOrderID != "" }
	byCode := func(r domain.FetchRequest) bool { return r.OrderCode != "" }

	return []strategy{
		{name: domain.StrategyRESTFulfillments, applies: byID, run: a.fetchRESTFulfillments},
		{name: domain.StrategyRESTOrder, applies: byID, run: a.fetchRESTOrder},
		{name: domain.StrategyGraphQLOrderByID, applies: byID, run: a.fetchGraphQLOrderByID},
		{name: domain.StrategyGraphQLOrderSearch, applies: byCode, run: a.fetchGraphQLOrderSearch},
	}
}

// FetchFulfillments retrieves the fulfillments of an order, trying each strategy in turn.
//
// The result is non-nil even when an error is returned so callers can record the attempts.
// The error wraps domain.ErrCarrierUnavailable and is only returned when every strategy
// that ran failed at the transport level.
func (a *ShopifyAdapter) FetchFulfillments(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error) {
	result := &domain.FetchResult{CarrierOrderID: req.CarrierOrderID}

	if !a.config.HasCredentials() {
		result.Reason = domain.ReasonMissingCredentials
		return result, nil
	}

	if req.CarrierOrderID == "" && req.OrderCode == "" {
		result.Reason = domain.ReasonMissingOrderID
		return result, nil
	}

	log := logger.Named("shopify")

	for _, s := range a.strategies() {
		if !s.applies(req) {
			result.Attempts = append(result.Attempts, domain.Attempt{Strategy: s.name, Skipped: true})
			continue
		}

		fulfillments, attempt := s.run(ctx, req)
		attempt.Strategy = s.name
		attempt.Fulfillments = len(fulfillments)
		result.Attempts = append(result.Attempts, attempt)

		if attempt.OrderFound {
			result.OrderFound = true
		}

		log.Debug("Fulfillment strategy finished",
			zap.String("strategy", s.name),
			zap.String("carrier_order_id", req.CarrierOrderID),
			zap.Int("status", attempt.Status),
			zap.Int("fulfillments", attempt.Fulfillments),
			zap.String("error", attempt.Error),
		)

		if len(fulfillments) > 0 {
			result.Fulfillments = fulfillments
			result.Strategy = s.name
			return result, nil
		}
	}

	if allTransportFailed(result.Attempts) {
		summary := summarize(result.Attempts)
		result.Reason = "carrier unavailable: " + summary
		return result, fmt.Errorf("%w: %s", domain.ErrCarrierUnavailable, summary)
	}

	switch {
	case result.OrderFound:
		result.Reason = domain.ReasonNoFulfillments
	case hasAPIErrors(result.Attempts):
		result.Reason = domain.ReasonAPIErrors
	default:
		result.Reason = domain.ReasonOrderNotFound
	}
	return result, nil
}

func (a *ShopifyAdapter) fetchRESTFulfillments(ctx context.Context, req domain.FetchRequest) ([]domain.Fulfillment, domain.Attempt) {
	path := fmt.Sprintf("/orders/%s/fulfillments.json", url.PathEscape(req.CarrierOrderID))

	var body map[string]any
	status, err := a.do(ctx, http.MethodGet, path, nil, &body)
	attempt := domain.Attempt{Status: status}
	if err != nil {
		attempt.Error = err.Error()
		return nil, attempt
	}

	raw, ok := body["fulfillments"]
	attempt.OrderFound = ok
	return fulfillmentsFrom(raw), attempt
}

func (a *ShopifyAdapter) fetchRESTOrder(ctx context.Context, req domain.FetchRequest) ([]domain.Fulfillment, domain.Attempt) {
	path := fmt.Sprintf("/orders/%s.json?fields=id,name,fulfillments", url.PathEscape(req.CarrierOrderID))

	var body map[string]any
	status, err := a.do(ctx, http.MethodGet, path, nil, &body)
	attempt := domain.Attempt{Status: status}
	if err != nil {
		attempt.Error = err.Error()
		return nil, attempt
	}

	order, _ := body["order"].(map[string]any)
	if order == nil {
		return nil, attempt
	}
	attempt.OrderFound = true
	return fulfillmentsFrom(order["fulfillments"]), attempt
}

func (a *ShopifyAdapter) fetchGraphQLOrderByID(ctx context.Context, req domain.FetchRequest) ([]domain.Fulfillment, domain.Attempt) {
	vars := map[string]any{"id": "gid://shopify/Order/" + req.CarrierOrderID}

	data, attempt := a.graphql(ctx, orderByIDQuery, vars)
	order, _ := data["order"].(map[string]any)
	if order == nil {
		return nil, attempt
	}
	attempt.OrderFound = true
	return fulfillmentsFrom(order["fulfillments"]), attempt
}

func (a *ShopifyAdapter) fetchGraphQLOrderSearch(ctx context.Context, req domain.FetchRequest) ([]domain.Fulfillment, domain.Attempt) {
	term := strings.TrimPrefix(strings.TrimSpace(req.OrderCode), "#")
	vars := map[string]any{"query": "name:" + term}

	data, attempt := a.graphql(ctx, orderSearchQuery, vars)
	candidates := nodes(data["orders"])
	order := pickCandidate(candidates, req.CarrierOrderID, term)
	if order == nil {
		return nil, attempt
	}
	attempt.OrderFound = true
	return fulfillmentsFrom(order["fulfillments"]), attempt
}

// pickCandidate prefers a numeric id match, then an exact name, then a partial name, then the first result.
func pickCandidate(candidates []map[string]any, carrierOrderID, term string) map[string]any {
	if len(candidates) == 0 {
		return nil
	}

	if carrierOrderID != "" {
		for _, c := range candidates {
			if str(c["legacyResourceId"]) == carrierOrderID || domain.CarrierOrderIDFrom(str(c["id"])) == carrierOrderID {
				return c
			}
		}
	}

	for _, c := range candidates {
		if strings.EqualFold(strings.TrimPrefix(str(c["name"]), "#"), term) {
			return c
		}
	}

	upper := strings.ToUpper(term)
	for _, c := range candidates {
		if upper != "" && strings.Contains(strings.ToUpper(str(c["name"])), upper) {
			return c
		}
	}

	return candidates[0]
}

// graphql posts a query and returns its data object. API-reported errors are recorded on the attempt.
func (a *ShopifyAdapter) graphql(ctx context.Context, query string, vars map[string]any) (map[string]any, domain.Attempt) {
	payload := map[string]any{"query": query, "variables": vars}

	var body struct {
		Data   map[string]any `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	status, err := a.do(ctx, http.MethodPost, "/graphql.json", payload, &body)
	attempt := domain.Attempt{Status: status}
	if err != nil {
		attempt.Error = err.Error()
		return nil, attempt
	}

	for _, e := range body.Errors {
		attempt.Errors = append(attempt.Errors, e.Message)
	}
	return body.Data, attempt
}

// do sends an authenticated request relative to the versioned Admin API root and decodes a 2xx JSON body into out.
func (a *ShopifyAdapter) do(ctx context.Context, method, path string, payload any, out any) (int, error) {
	endpoint := fmt.Sprintf("%s/admin/api/%s%s", a.config.BaseURL(), a.config.APIVersion, path)

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, a.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("shopify API returned status: %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// fulfillmentsFrom accepts a plain list or a GraphQL connection (nodes or edges).
func fulfillmentsFrom(v any) []domain.Fulfillment {
	var out []domain.Fulfillment
	for _, obj := range nodes(v) {
		out = append(out, domain.Fulfillment(obj))
	}
	return out
}

func nodes(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	case map[string]any:
		if list, ok := t["nodes"]; ok {
			return nodes(list)
		}
		if edges, ok := t["edges"].([]any); ok {
			out := make([]map[string]any, 0, len(edges))
			for _, e := range edges {
				edge, _ := e.(map[string]any)
				if node, ok := edge["node"].(map[string]any); ok {
					out = append(out, node)
				}
			}
			return out
		}
	}
	return nil
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func allTransportFailed(attempts []domain.Attempt) bool {
	ran := 0
	for _, a := range attempts {
		if a.Skipped {
			continue
		}
		ran++
		if !a.TransportFailed() {
			return false
		}
	}
	return ran > 0
}

func hasAPIErrors(attempts []domain.Attempt) bool {
	for _, a := range attempts {
		if len(a.Errors) > 0 {
			return true
		}
	}
	return false
}

// summarize renders "strategy=status" pairs, e.g. "rest_order=502, graphql_order_by_id=network error".
func summarize(attempts []domain.Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.Skipped {
			continue
		}
		status := "network error"
		if a.Status > 0 {
			status = strconv.Itoa(a.Status)
		}
		parts = append(parts, a.Strategy+"="+status)
	}
	return strings.Join(parts, ", ")
}
