package profile

import (
	"testing"

	"MomentumScanner/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiles_Columns(t *testing.T) {
	mh := MarketHours()
	pm := PreMarket()

	assert.False(t, mh.HasColumn(model.ColPremarketClose))
	assert.True(t, pm.HasColumn(model.ColPremarketClose))
	assert.Equal(t, mh.Columns, pm.Columns[:len(mh.Columns)], "shared prefix must keep its order")
}

func TestProfiles_FreshCopies(t *testing.T) {
	a := MarketHours()
	a.Columns[0] = "mutated"
	assert.Equal(t, model.ColName, MarketHours().Columns[0])
}

func TestAll_MarketOverride(t *testing.T) {
	ps := All("canada")
	require.Len(t, ps, 2)
	assert.Equal(t, MarketHoursName, ps[0].Name)
	assert.Equal(t, PreMarketName, ps[1].Name)
	for _, p := range ps {
		assert.Equal(t, "canada", p.Market)
	}
	assert.Equal(t, "america", All("")[0].Market)
}

func TestByName(t *testing.T) {
	p, err := ByName(PreMarketName)
	require.NoError(t, err)
	assert.Equal(t, PreMarketName, p.Name)

	_, err = ByName("afterhours")
	assert.Error(t, err)
}
