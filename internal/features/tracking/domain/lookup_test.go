package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarrierOrderIDFrom(t *testing.T) {
	tests := map[string]string{
		"":                               "",
		"5120000000001":                  "5120000000001",
		" 42 ":                           "42",
		"gid://shopify/Order/5120000000": "5120000000",
		"order-12-v2-9981":               "9981",
		"no digits":                      "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, CarrierOrderIDFrom(raw), raw)
	}
}

func TestAttempt_TransportFailed(t *testing.T) {
	assert.True(t, Attempt{Strategy: StrategyRESTOrder}.TransportFailed())
	assert.True(t, Attempt{Status: 502}.TransportFailed())
	assert.True(t, Attempt{Status: 404}.TransportFailed())
	assert.False(t, Attempt{Status: 200}.TransportFailed())
	assert.False(t, Attempt{Skipped: true}.TransportFailed())
}
