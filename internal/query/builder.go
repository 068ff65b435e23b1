// Package query turns scan profiles into screener request payloads.
package query

import (
	"MomentumScanner/internal/model"
)

// Build assembles the screener request for a profile. It performs no I/O and the
// returned request shares no slices with the profile.
func Build(p *model.ScanProfile) (*model.ScanRequest, error) {
	if p == nil {
		return nil, model.NewInvalidProfileError("", "nil profile")
	}
	if len(p.Columns) == 0 {
		return nil, model.NewInvalidProfileError(p.Name, "no columns")
	}
	if p.Range.Start < 0 || p.Range.Start > p.Range.End {
		return nil, model.NewInvalidProfileError(p.Name, "result range [%d, %d] is invalid", p.Range.Start, p.Range.End)
	}
	if p.Market == "" {
		return nil, model.NewInvalidProfileError(p.Name, "no market scope")
	}
	if p.Sort.Field == "" {
		return nil, model.NewInvalidProfileError(p.Name, "no sort field")
	}
	if p.Sort.Direction != model.SortAsc && p.Sort.Direction != model.SortDesc {
		return nil, model.NewInvalidProfileError(p.Name, "sort direction %q", p.Sort.Direction)
	}

	columns := make([]string, len(p.Columns))
	copy(columns, p.Columns)
	filters := make([]model.FilterClause, len(p.Filters))
	copy(filters, p.Filters)

	return &model.ScanRequest{
		Profile: p.Name,
		Columns: columns,
		Filter:  filters,
		Markets: []string{p.Market},
		Range:   [2]int{p.Range.Start, p.Range.End},
		Sort: model.ScanSort{
			SortBy:    p.Sort.Field,
			SortOrder: p.Sort.Direction,
		},
	}, nil
}
