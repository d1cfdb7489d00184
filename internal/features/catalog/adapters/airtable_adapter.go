package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	"order-tracker/internal/features/catalog/domain"

	"go.uber.org/zap"
)

const pageSize = 100

// AirtableAdapter implements the RecordStore and AllowList interfaces on the Airtable REST API.
type AirtableAdapter struct {
	client *http.Client
	config config.AirtableConfig
}

// NewAirtableAdapter creates a new instance of AirtableAdapter.
func NewAirtableAdapter(cfg config.AirtableConfig, proxySettings proxy.Settings) *AirtableAdapter {
	return &AirtableAdapter{
		client: httpclient.New(httpclient.Options{
			Timeout: cfg.Timeout,
			Proxy:   proxySettings,
		}),
		config: cfg,
	}
}

// MissingConfig lists the unset settings needed to reach the catalog table.
func (a *AirtableAdapter) MissingConfig() []string {
	var missing []string
	for _, kv := range []struct{ key, value string }{
		{"AIRTABLE_BASE", a.config.BaseID},
		{"AIRTABLE_TABLE", a.config.Table},
		{"AIRTABLE_TOKEN", a.config.Token},
	} {
		if strings.TrimSpace(kv.value) == "" {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

type listResponse struct {
	Records []domain.RawRecord `json:"records"`
	Offset  string             `json:"offset"`
}

// List returns every record of the catalog table, following the offset cursor.
func (a *AirtableAdapter) List(ctx context.Context) ([]domain.RawRecord, error) {
	if len(a.MissingConfig()) > 0 {
		return nil, domain.ErrNotConfigured
	}

	records := []domain.RawRecord{}
	offset := ""
	for {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := a.do(ctx, http.MethodGet, a.tableURL(a.config.Table, "", q), nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// Create inserts a record.
func (a *AirtableAdapter) Create(ctx context.Context, fields map[string]any) error {
	if len(a.MissingConfig()) > 0 {
		return domain.ErrNotConfigured
	}
	return a.do(ctx, http.MethodPost, a.tableURL(a.config.Table, "", nil), map[string]any{"fields": fields}, nil)
}

// Update patches the given fields of a record.
func (a *AirtableAdapter) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(a.MissingConfig()) > 0 {
		return domain.ErrNotConfigured
	}
	return a.do(ctx, http.MethodPatch, a.tableURL(a.config.Table, id, nil), map[string]any{"fields": fields}, nil)
}

// Delete removes a record.
func (a *AirtableAdapter) Delete(ctx context.Context, id string) error {
	if len(a.MissingConfig()) > 0 {
		return domain.ErrNotConfigured
	}
	return a.do(ctx, http.MethodDelete, a.tableURL(a.config.Table, id, nil), nil, nil)
}

// IsAllowed reports whether email appears in the admin table.
// A missing admin table or a rejected query counts as not allowed.
func (a *AirtableAdapter) IsAllowed(ctx context.Context, email string) (bool, error) {
	if a.config.BaseID == "" || a.config.AdminTable == "" || a.config.Token == "" {
		return false, nil
	}

	q := url.Values{}
	q.Set("filterByFormula", EmailFormula(email))
	q.Set("maxRecords", "1")

	var page listResponse
	err := a.do(ctx, http.MethodGet, a.tableURL(a.config.AdminTable, "", q), nil, &page)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			logger.Named("airtable").Warn("Allow-list query rejected", zap.Int("status", statusErr.Status))
			return false, nil
		}
		return false, err
	}
	return len(page.Records) > 0, nil
}

// EmailFormula builds a case-insensitive filter matching a single email.
func EmailFormula(email string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(strings.ToLower(strings.TrimSpace(email)))
	return fmt.Sprintf("LOWER({Email})='%s'", escaped)
}

func (a *AirtableAdapter) tableURL(table, id string, q url.Values) string {
	endpoint := fmt.Sprintf("%s/%s/%s", strings.TrimRight(a.config.APIURL, "/"), url.PathEscape(a.config.BaseID), url.PathEscape(table))
	if id != "" {
		endpoint += "/" + url.PathEscape(id)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return endpoint
}

// StatusError is returned when Airtable answers with a non-2xx status. Message is the response body.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable API returned status: %d", e.Status)
	}
	return e.Message
}

func (a *AirtableAdapter) do(ctx context.Context, method, endpoint string, payload any, out any) error {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
