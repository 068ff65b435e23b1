package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// SignedPercent is a signed percentage with its sign tag. Valid is false when the
// value could not be derived ("unavailable"); Positive is strictly value > 0.
type SignedPercent struct {
	Value    decimal.Decimal
	Valid    bool
	Positive bool
}

// NewSignedPercent tags v with its sign.
func NewSignedPercent(v decimal.Decimal) SignedPercent {
	return SignedPercent{Value: v, Valid: true, Positive: v.IsPositive()}
}

// Unavailable is the sentinel for a derived percentage that has no value.
func Unavailable() SignedPercent { return SignedPercent{} }

// NormalizedRecord is one screener row with named, typed fields.
type NormalizedRecord struct {
	Ticker         string
	Symbol         string
	Company        string
	Price          decimal.Decimal
	Change         SignedPercent
	Volume         int64
	RelativeVolume decimal.Decimal
	MarketCap      int64
	Sector         string
	Exchange       string
	// PremarketChange is nil for profiles that do not request premarket_close.
	PremarketChange *SignedPercent
}

// ScanResult is the outcome of one successful fetch for a profile.
type ScanResult struct {
	Profile    string
	AsOf       time.Time
	Records    []NormalizedRecord
	TotalCount int
	Dropped    int
}

// Len returns the number of records.
func (r *ScanResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// RefreshState is the refresh bookkeeping of one running session.
type RefreshState struct {
	LastRefresh   time.Time
	ManualTrigger bool
}

// RawRow is one positional row of a screener response: the item's "s" ticker and
// its "d" values in requested column order.
type RawRow struct {
	Ticker string
	Values []gjson.Result
}

// ScanResponse is a validated screener response.
type ScanResponse struct {
	TotalCount int
	Rows       []RawRow
}
