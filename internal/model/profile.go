package model

// Screener column names.
const (
	ColName            = "name"
	ColDescription     = "description"
	ColClose           = "close"
	ColChange          = "change"
	ColVolume          = "volume"
	ColRelativeVolume  = "relative_volume_10d_calc"
	ColMarketCap       = "market_cap_basic"
	ColSector          = "sector"
	ColExchange        = "exchange"
	ColPremarketClose  = "premarket_close"
	ColFloatShares     = "float_shares_outstanding_current"
	ColPremarketChange = "premarket_change"
)

// Sort directions accepted by the screener.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ResultRange is the [Start, End) window of rows requested from the screener.
type ResultRange struct {
	Start int
	End   int
}

// SortSpec orders the screener's result set.
type SortSpec struct {
	Field     string
	Direction string
}

// ScanProfile is a fixed combination of filters, columns and sort used to scan one
// category of stocks. Columns[i] names the value at index i of every raw row.
type ScanProfile struct {
	Name    string
	Title   string
	Columns []string
	Filters []FilterClause
	Market  string
	Range   ResultRange
	Sort    SortSpec
}

// HasColumn reports whether the profile requests the named column.
func (p *ScanProfile) HasColumn(name string) bool {
	for _, c := range p.Columns {
		if c == name {
			return true
		}
	}
	return false
}
