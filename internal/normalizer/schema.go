package normalizer

import (
	"MomentumScanner/internal/model"
)

// Kind is the scalar type expected at a column.
type Kind int

const (
	KindString Kind = iota
	KindDecimal
	KindInteger
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	}
	return "unknown"
}

type fieldSpec struct {
	kind     Kind
	required bool
	nullable bool
}

// fields lists every column the normalizer reads.
var fields = map[string]fieldSpec{
	model.ColName:           {kind: KindString, required: true},
	model.ColDescription:    {kind: KindString, required: true},
	model.ColClose:          {kind: KindDecimal, required: true},
	model.ColChange:         {kind: KindDecimal, required: true},
	model.ColVolume:         {kind: KindInteger, required: true},
	model.ColRelativeVolume: {kind: KindDecimal, required: true},
	model.ColMarketCap:      {kind: KindInteger, required: true},
	model.ColSector:         {kind: KindString, required: true, nullable: true},
	model.ColExchange:       {kind: KindString, required: true, nullable: true},
	model.ColPremarketClose: {kind: KindDecimal, nullable: true},
}

// Schema maps a profile's column names to row indexes and expected kinds. It is
// compiled once per profile so a drift between requested columns and the fields the
// normalizer reads fails at startup instead of misreading rows.
type Schema struct {
	Profile   string
	columns   []string
	index     map[string]int
	premarket bool
}

// Compile builds the schema for a profile.
func Compile(p *model.ScanProfile) (*Schema, error) {
	if p == nil {
		return nil, model.NewInvalidProfileError("", "nil profile")
	}
	if len(p.Columns) == 0 {
		return nil, model.NewInvalidProfileError(p.Name, "no columns")
	}

	s := &Schema{
		Profile: p.Name,
		columns: make([]string, len(p.Columns)),
		index:   make(map[string]int, len(p.Columns)),
	}
	copy(s.columns, p.Columns)

	for i, col := range p.Columns {
		if _, dup := s.index[col]; dup {
			return nil, model.NewInvalidProfileError(p.Name, "column %q requested twice", col)
		}
		s.index[col] = i
	}
	for name, spec := range fields {
		if spec.required {
			if _, ok := s.index[name]; !ok {
				return nil, model.NewInvalidProfileError(p.Name, "required column %q missing", name)
			}
		}
	}
	_, s.premarket = s.index[model.ColPremarketClose]
	return s, nil
}

// Index returns the row position of a column.
func (s *Schema) Index(column string) (int, bool) {
	i, ok := s.index[column]
	return i, ok
}

// Width is the number of values a complete row carries.
func (s *Schema) Width() int { return len(s.columns) }

// Columns returns a copy of the column order the schema was compiled from.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// HasPremarket reports whether rows carry premarket_close.
func (s *Schema) HasPremarket() bool { return s.premarket }
