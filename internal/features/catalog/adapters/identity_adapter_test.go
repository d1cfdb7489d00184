package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"order-tracker/internal/core/config"
	"order-tracker/internal/core/proxy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityAdapter_Verify(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, identityPath, r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id":"u1","email":"ops@stash.example.com"}`)
	}))
	defer ts.Close()

	adapter := NewIdentityAdapter(config.IdentityConfig{SiteURL: ts.URL + "/"}, proxy.Settings{})
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		user, err := adapter.Verify(ctx, "Bearer good")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "ops@stash.example.com", user.Email)
	})

	t.Run("Rejected", func(t *testing.T) {
		user, err := adapter.Verify(ctx, "Bearer bad")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("NotBearer", func(t *testing.T) {
		user, err := adapter.Verify(ctx, "Basic Zm9vOmJhcg==")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestIdentityAdapter_NoSiteURL(t *testing.T) {
	adapter := NewIdentityAdapter(config.IdentityConfig{}, proxy.Settings{})

	user, err := adapter.Verify(context.Background(), "Bearer good")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestIdentityAdapter_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	adapter := NewIdentityAdapter(config.IdentityConfig{SiteURL: ts.URL}, proxy.Settings{})

	user, err := adapter.Verify(context.Background(), "bearer good")
	assert.NoError(t, err)
	assert.Nil(t, user)
}
