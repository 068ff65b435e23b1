package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		current, reference, want string
	}{
		{"10", "8", "25"},
		{"6", "8", "-25"},
		{"8", "8", "0"},
		{"1.5", "1", "50"},
		{"0", "4", "-100"},
	}
	for _, tt := range tests {
		got, err := PercentChange(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.reference))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s vs %s: got %s", tt.current, tt.reference, got)
	}

	_, err := PercentChange(decimal.NewFromInt(1), decimal.Zero)
	assert.Error(t, err)
}

func TestPremarketChange(t *testing.T) {
	pm := PremarketChange(decimal.RequireFromString("10.00"), decimal.RequireFromString("8.00"), true)
	assert.True(t, pm.Valid)
	assert.True(t, pm.Positive)
	assert.Equal(t, "25.00", pm.Value.StringFixed(2))

	assert.False(t, PremarketChange(decimal.NewFromInt(10), decimal.Zero, true).Valid)
	assert.False(t, PremarketChange(decimal.NewFromInt(10), decimal.NewFromInt(8), false).Valid)
}
