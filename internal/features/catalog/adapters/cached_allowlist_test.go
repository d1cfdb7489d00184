package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-tracker/internal/core/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAllowList is a mock implementation of ports.AllowList.
type MockAllowList struct {
	mock.Mock
}

func (m *MockAllowList) IsAllowed(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *cache.RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestCachedAllowList_CachesAnswers(t *testing.T) {
	mr, c := newRedisCache(t)
	next := new(MockAllowList)
	list := NewCachedAllowList(next, c, time.Minute)
	ctx := context.Background()

	next.On("IsAllowed", ctx, "Ops@Stash.example.com").Return(true, nil).Once()
	next.On("IsAllowed", ctx, "guest@stash.example.com").Return(false, nil).Once()

	for i := 0; i < 2; i++ {
		allowed, err := list.IsAllowed(ctx, "Ops@Stash.example.com")
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = list.IsAllowed(ctx, "guest@stash.example.com")
		require.NoError(t, err)
		assert.False(t, allowed)
	}

	next.AssertExpectations(t)
	value, err := mr.Get(allowListKeyPrefix + "ops@stash.example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
	assert.Equal(t, time.Minute, mr.TTL(allowListKeyPrefix+"guest@stash.example.com"))
}

func TestCachedAllowList_Expiry(t *testing.T) {
	mr, c := newRedisCache(t)
	next := new(MockAllowList)
	list := NewCachedAllowList(next, c, time.Minute)
	ctx := context.Background()

	next.On("IsAllowed", ctx, "ops@stash.example.com").Return(false, nil).Once()
	allowed, err := list.IsAllowed(ctx, "ops@stash.example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	next.On("IsAllowed", ctx, "ops@stash.example.com").Return(true, nil).Once()
	allowed, err = list.IsAllowed(ctx, "ops@stash.example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
	next.AssertExpectations(t)
}

func TestCachedAllowList_UpstreamErrorNotCached(t *testing.T) {
	mr, c := newRedisCache(t)
	next := new(MockAllowList)
	list := NewCachedAllowList(next, c, time.Minute)
	ctx := context.Background()

	next.On("IsAllowed", ctx, "ops@stash.example.com").Return(false, errors.New("timeout")).Once()

	_, err := list.IsAllowed(ctx, "ops@stash.example.com")

	assert.Error(t, err)
	assert.False(t, mr.Exists(allowListKeyPrefix+"ops@stash.example.com"))
}

func TestCachedAllowList_CacheDown(t *testing.T) {
	mr, c := newRedisCache(t)
	mr.Close()
	next := new(MockAllowList)
	list := NewCachedAllowList(next, c, time.Minute)
	ctx := context.Background()

	next.On("IsAllowed", ctx, "ops@stash.example.com").Return(true, nil).Once()

	allowed, err := list.IsAllowed(ctx, "ops@stash.example.com")

	require.NoError(t, err)
	assert.True(t, allowed)
	next.AssertExpectations(t)
}
