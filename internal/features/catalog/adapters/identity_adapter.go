package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"order-tracker/internal/core/config"
	"order-tracker/internal/core/httpclient"
	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/proxy"
	"order-tracker/internal/features/catalog/domain"

	"go.uber.org/zap"
)

const identityPath = "/.netlify/identity/user"

// IdentityAdapter implements the IdentityVerifier interface against the site's identity endpoint.
type IdentityAdapter struct {
	client  *http.Client
	siteURL string
}

// NewIdentityAdapter creates a new instance of IdentityAdapter.
func NewIdentityAdapter(cfg config.IdentityConfig, proxySettings proxy.Settings) *IdentityAdapter {
	return &IdentityAdapter{
		client:  httpclient.New(httpclient.Options{Timeout: 5 * time.Second, Proxy: proxySettings}),
		siteURL: strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/"),
	}
}

// Verify forwards the Authorization header to the identity endpoint.
// Any failure yields a nil user rather than an error.
func (a *IdentityAdapter) Verify(ctx context.Context, authorization string) (*domain.User, error) {
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") || a.siteURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.siteURL+identityPath, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("Authorization", authorization)

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Named("identity").Warn("Identity endpoint unreachable", zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, nil
	}
	return &user, nil
}
