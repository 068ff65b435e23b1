package query

import (
	"errors"
	"testing"

	"MomentumScanner/internal/model"
	"MomentumScanner/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MarketHoursPayload(t *testing.T) {
	req, err := Build(profile.MarketHours())
	require.NoError(t, err)

	body, err := req.Body()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"columns": ["name","description","close","change","volume","relative_volume_10d_calc","market_cap_basic","sector","exchange"],
		"filter": [
			{"left":"close","operation":"in_range","right":[1,30]},
			{"left":"change","operation":"greater","right":10},
			{"left":"relative_volume_10d_calc","operation":"greater","right":5},
			{"left":"float_shares_outstanding_current","operation":"in_range","right":[0,10000000]},
			{"left":"volume","operation":"greater","right":10000000}
		],
		"markets": ["america"],
		"range": [0,100],
		"sort": {"sortBy":"market_cap_basic","sortOrder":"desc"}
	}`, string(body))
}

func TestBuild_PreMarketPayload(t *testing.T) {
	req, err := Build(profile.PreMarket())
	require.NoError(t, err)

	assert.Equal(t, model.ColPremarketClose, req.Columns[len(req.Columns)-1])
	require.Len(t, req.Filter, 5)
	assert.Equal(t, model.ColPremarketChange, req.Filter[4].Field())
	assert.Equal(t, 20.0, req.Filter[4].Bound())
	assert.Equal(t, 1_000_000.0, req.Filter[3].Bound())
}

func TestBuild_IsDeterministicAndDetached(t *testing.T) {
	p := profile.PreMarket()
	a, err := Build(p)
	require.NoError(t, err)
	b, err := Build(p)
	require.NoError(t, err)

	ab, _ := a.Body()
	bb, _ := b.Body()
	assert.Equal(t, string(ab), string(bb))

	a.Columns[0] = "mutated"
	assert.Equal(t, model.ColName, p.Columns[0])
}

func TestBuild_InvalidProfiles(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *model.ScanProfile)
	}{
		{"no columns", func(p *model.ScanProfile) { p.Columns = nil }},
		{"inverted range", func(p *model.ScanProfile) { p.Range = model.ResultRange{Start: 50, End: 10} }},
		{"negative start", func(p *model.ScanProfile) { p.Range = model.ResultRange{Start: -1, End: 10} }},
		{"no market", func(p *model.ScanProfile) { p.Market = "" }},
		{"no sort field", func(p *model.ScanProfile) { p.Sort.Field = "" }},
		{"bad direction", func(p *model.ScanProfile) { p.Sort.Direction = "sideways" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile.MarketHours()
			tt.modify(p)
			_, err := Build(p)
			require.Error(t, err)

			var ipe *model.InvalidProfileError
			assert.True(t, errors.As(err, &ipe))
			assert.True(t, errors.Is(err, model.ErrInvalidProfile))
		})
	}

	_, err := Build(nil)
	assert.ErrorIs(t, err, model.ErrInvalidProfile)
}

func TestBuild_EmptyRangeIsValid(t *testing.T) {
	p := profile.MarketHours()
	p.Range = model.ResultRange{Start: 10, End: 10}
	req, err := Build(p)
	require.NoError(t, err)
	assert.Equal(t, [2]int{10, 10}, req.Range)
}
