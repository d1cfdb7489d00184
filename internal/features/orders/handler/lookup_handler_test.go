package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"order-tracker/internal/core/config"
	"order-tracker/internal/core/server"
	"order-tracker/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLookupService is a mock implementation of ports.LookupService.
type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) Lookup(ctx context.Context, phone, orderCode string) (*domain.LookupResult, error) {
	args := m.Called(ctx, phone, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LookupResult), args.Error(1)
}

func setupApp(service *MockLookupService) *fiber.App {
	srv := server.New(&config.AppConfig{ServerPort: 8080})
	NewLookupHandler(service).Register(srv.App)
	return srv.App
}

func post(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/order-lookup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp, out
}

func TestLookupHandler_Found(t *testing.T) {
	svc := new(MockLookupService)
	app := setupApp(svc)

	svc.On("Lookup", mock.Anything, "5512345678", "ST-1001").Return(&domain.LookupResult{
		Found: true,
		Order: &domain.OrderRecord{OrderName: "ST-1001", TrackingURL: "https://carrier.example.com/7012"},
		Stage: domain.StageForaneoShipped,
	}, nil).Once()

	resp, out := post(t, app, `{"phone":"5512345678","orderNumber":"ST-1001"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "foraneo_shipped", out["stage"])
	order, ok := out["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://carrier.example.com/7012", order["tracking_url"])
	svc.AssertExpectations(t)
}

func TestLookupHandler_NotFound(t *testing.T) {
	svc := new(MockLookupService)
	app := setupApp(svc)

	svc.On("Lookup", mock.Anything, "5512345678", "ST-404").Return(&domain.LookupResult{Found: false}, nil).Once()

	resp, out := post(t, app, `{"phone":"5512345678","orderNumber":"ST-404"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["found"])
	assert.Nil(t, out["order"])
}

func TestLookupHandler_Aliases(t *testing.T) {
	svc := new(MockLookupService)
	app := setupApp(svc)

	svc.On("Lookup", mock.Anything, "5512345678", "ST-77").Return(&domain.LookupResult{}, nil).Twice()

	resp, _ := post(t, app, `{"phone":5512345678,"order_name":"ST-77"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = post(t, app, `{"phone":"5512345678","order_number":"ST-77"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestLookupHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"InvalidPhone", domain.ErrInvalidPhone, http.StatusBadRequest, msgInvalidPhone},
		{"InvalidOrderCode", domain.ErrInvalidOrderCode, http.StatusBadRequest, msgInvalidOrderCode},
		{"Configuration", fmt.Errorf("%w: PGHOST", domain.ErrConfigurationMissing), http.StatusInternalServerError, msgConfiguration},
		{"Upstream", fmt.Errorf("%w: timeout", domain.ErrUpstreamUnavailable), http.StatusInternalServerError, msgLookupFailed},
		{"Unexpected", errors.New("boom"), http.StatusInternalServerError, msgLookupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLookupService)
			app := setupApp(svc)
			svc.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			resp, out := post(t, app, `{"phone":"1","orderNumber":"x"}`)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, out["error"])
			assert.Equal(t, resp.Header.Get(server.RequestIDHeader), out["ray_id"])
		})
	}
}

func TestLookupHandler_InvalidBody(t *testing.T) {
	svc := new(MockLookupService)
	app := setupApp(svc)

	for _, body := range []string{"", "{", "[]", `{"phone":true}`} {
		resp, out := post(t, app, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, msgInvalidBody, out["error"], body)
	}
	svc.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func TestLookupHandler_MethodNotAllowed(t *testing.T) {
	svc := new(MockLookupService)
	app := setupApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/order-lookup", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	svc.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
}
