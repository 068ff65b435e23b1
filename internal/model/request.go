package model

import "encoding/json"

// ScanSort is the wire form of a sort order.
type ScanSort struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// ScanRequest is the serialisable screener payload for one profile.
type ScanRequest struct {
	Profile string         `json:"-"`
	Columns []string       `json:"columns"`
	Filter  []FilterClause `json:"filter"`
	Markets []string       `json:"markets"`
	Range   [2]int         `json:"range"`
	Sort    ScanSort       `json:"sort"`
}

// Body marshals the request into the JSON posted to the screener.
func (r *ScanRequest) Body() ([]byte, error) {
	return json.Marshal(r)
}
