package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-tracker/internal/core/config"
	"order-tracker/internal/core/proxy"
	"order-tracker/internal/features/catalog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAirtable(t *testing.T, handler http.HandlerFunc) *AirtableAdapter {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewAirtableAdapter(config.AirtableConfig{
		APIURL:     ts.URL + "/v0",
		BaseID:     "appBase",
		Table:      "Discos",
		AdminTable: "Admins",
		Token:      "pat-secret",
		Timeout:    time.Second,
	}, proxy.Settings{})
}

func TestAirtableAdapter_List_Paginates(t *testing.T) {
	var offsets []string
	adapter := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v0/appBase/Discos", r.URL.Path)
		assert.Equal(t, "Bearer pat-secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("pageSize"))

		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		switch offset {
		case "":
			fmt.Fprint(w, `{"records":[{"id":"rec1","fields":{"Album Name":"Uno"}}],"offset":"itr2"}`)
		case "itr2":
			fmt.Fprint(w, `{"records":[{"id":"rec2","fields":{"Album Name":"Dos"}}]}`)
		default:
			t.Errorf("unexpected offset %q", offset)
		}
	})

	records, err := adapter.List(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "Dos", records[1].Fields["Album Name"])
	assert.Equal(t, []string{"", "itr2"}, offsets)
}

func TestAirtableAdapter_List_ErrorBody(t *testing.T) {
	adapter := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":{"type":"INVALID_REQUEST"}}`)
	})

	_, err := adapter.List(context.Background())

	require.Error(t, err)
	assert.Equal(t, `{"error":{"type":"INVALID_REQUEST"}}`, err.Error())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
}

func TestAirtableAdapter_Writes(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	adapter := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		if r.ContentLength > 0 {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		}
		calls = append(calls, c)
		fmt.Fprint(w, `{"id":"recX"}`)
	})
	ctx := context.Background()
	fields := domain.RecordInput{Album: "Uno", Artist: "A"}.Fields()

	require.NoError(t, adapter.Create(ctx, fields))
	require.NoError(t, adapter.Update(ctx, "rec7", fields))
	require.NoError(t, adapter.Delete(ctx, "rec7"))

	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/v0/appBase/Discos", calls[0].path)
	assert.Equal(t, map[string]any{"Album Name": "Uno", "Artist": "A"}, calls[0].body["fields"])

	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Equal(t, "/v0/appBase/Discos/rec7", calls[1].path)
	assert.NotNil(t, calls[1].body["fields"])

	assert.Equal(t, http.MethodDelete, calls[2].method)
	assert.Equal(t, "/v0/appBase/Discos/rec7", calls[2].path)
	assert.Nil(t, calls[2].body)
}

func TestAirtableAdapter_NotConfigured(t *testing.T) {
	adapter := NewAirtableAdapter(config.AirtableConfig{APIURL: "http://127.0.0.1:1", Token: "x"}, proxy.Settings{})

	assert.Equal(t, []string{"AIRTABLE_BASE", "AIRTABLE_TABLE"}, adapter.MissingConfig())

	_, err := adapter.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.ErrorIs(t, adapter.Create(context.Background(), nil), domain.ErrNotConfigured)

	allowed, err := adapter.IsAllowed(context.Background(), "ops@stash.example.com")
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestAirtableAdapter_IsAllowed(t *testing.T) {
	adapter := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/appBase/Admins", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("maxRecords"))

		switch r.URL.Query().Get("filterByFormula") {
		case "LOWER({Email})='ops@stash.example.com'":
			fmt.Fprint(w, `{"records":[{"id":"recA","fields":{"Email":"Ops@Stash.example.com"}}]}`)
		case "LOWER({Email})='broken@stash.example.com'":
			w.WriteHeader(http.StatusForbidden)
		default:
			fmt.Fprint(w, `{"records":[]}`)
		}
	})
	ctx := context.Background()

	allowed, err := adapter.IsAllowed(ctx, " Ops@Stash.Example.com ")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = adapter.IsAllowed(ctx, "guest@stash.example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = adapter.IsAllowed(ctx, "broken@stash.example.com")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestEmailFormula(t *testing.T) {
	assert.Equal(t, "LOWER({Email})='ops@stash.example.com'", EmailFormula("OPS@stash.example.com"))
	assert.Equal(t, `LOWER({Email})='o\'brien@stash.example.com'`, EmailFormula("o'brien@stash.example.com"))
	assert.Equal(t, `LOWER({Email})='a\\\'b'`, EmailFormula(`a\'b`))
}
