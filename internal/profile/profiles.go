// Package profile holds the fixed screener profiles.
package profile

import (
	"fmt"

	"MomentumScanner/internal/model"
)

// Profile names.
const (
	MarketHoursName = "market_hours"
	PreMarketName   = "premarket"
)

const (
	defaultMarket = "america"
	maxFloat      = 10_000_000
)

// baseColumns is the column prefix shared by both profiles. The normalizer's schema is
// compiled from the profile's column order, so new columns go at the end.
var baseColumns = []string{
	model.ColName,
	model.ColDescription,
	model.ColClose,
	model.ColChange,
	model.ColVolume,
	model.ColRelativeVolume,
	model.ColMarketCap,
	model.ColSector,
	model.ColExchange,
}

// MarketHours scans for intraday high-momentum stocks.
func MarketHours() *model.ScanProfile {
	return &model.ScanProfile{
		Name:    MarketHoursName,
		Title:   "Market Hours Scanner",
		Columns: columns(),
		Filters: []model.FilterClause{
			mustClause(model.NewInRange(model.ColClose, 1, 30)),
			mustClause(model.NewGreater(model.ColChange, 10)),
			mustClause(model.NewGreater(model.ColRelativeVolume, 5)),
			mustClause(model.NewInRange(model.ColFloatShares, 0, maxFloat)),
			mustClause(model.NewGreater(model.ColVolume, 10_000_000)),
		},
		Market: defaultMarket,
		Range:  model.ResultRange{Start: 0, End: 100},
		Sort:   model.SortSpec{Field: model.ColMarketCap, Direction: model.SortDesc},
	}
}

// PreMarket scans for pre-market movers and requests premarket_close for the
// derived pre-market change.
func PreMarket() *model.ScanProfile {
	return &model.ScanProfile{
		Name:    PreMarketName,
		Title:   "Pre-Market Movers",
		Columns: columns(model.ColPremarketClose),
		Filters: []model.FilterClause{
			mustClause(model.NewInRange(model.ColClose, 1, 30)),
			mustClause(model.NewGreater(model.ColRelativeVolume, 5)),
			mustClause(model.NewInRange(model.ColFloatShares, 0, maxFloat)),
			mustClause(model.NewGreater(model.ColVolume, 1_000_000)),
			mustClause(model.NewGreater(model.ColPremarketChange, 20)),
		},
		Market: defaultMarket,
		Range:  model.ResultRange{Start: 0, End: 100},
		Sort:   model.SortSpec{Field: model.ColMarketCap, Direction: model.SortDesc},
	}
}

// All returns both profiles in display order, scoped to market.
func All(market string) []*model.ScanProfile {
	profiles := []*model.ScanProfile{MarketHours(), PreMarket()}
	if market != "" {
		for _, p := range profiles {
			p.Market = market
		}
	}
	return profiles
}

// ByName returns the named profile.
func ByName(name string) (*model.ScanProfile, error) {
	switch name {
	case MarketHoursName:
		return MarketHours(), nil
	case PreMarketName:
		return PreMarket(), nil
	}
	return nil, fmt.Errorf("unknown profile %q", name)
}

func columns(extra ...string) []string {
	cols := make([]string, 0, len(baseColumns)+len(extra))
	cols = append(cols, baseColumns...)
	return append(cols, extra...)
}

func mustClause(c model.FilterClause, err error) model.FilterClause {
	if err != nil {
		panic(err)
	}
	return c
}
