// Package normalizer maps positional screener rows to named, typed records.
package normalizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"MomentumScanner/internal/model"
)

var (
	// ErrWrongType is returned when a value has a different scalar type than its column.
	ErrWrongType = errors.New("wrong scalar type")
	// ErrMissingField is returned when a row is too short to hold a required column.
	ErrMissingField = errors.New("missing field")
)

// NormalizationError reports a dropped row.
type NormalizationError struct {
	Profile string
	Row     int
	Field   string
	Err     error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s row %d field %q: %v", e.Profile, e.Row, e.Field, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// Normalize converts every row of resp into a record. Rows that fail to convert are
// dropped and reported; the remaining rows keep the server's order.
func Normalize(s *Schema, resp *model.ScanResponse, asOf time.Time) (*model.ScanResult, []*NormalizationError) {
	result := &model.ScanResult{
		Profile: s.Profile,
		AsOf:    asOf,
	}
	if resp == nil {
		return result, nil
	}
	result.TotalCount = resp.TotalCount
	result.Records = make([]model.NormalizedRecord, 0, len(resp.Rows))

	var errs []*NormalizationError
	for i, row := range resp.Rows {
		rec, err := normalizeRow(s, row)
		if err != nil {
			err.Row = i
			errs = append(errs, err)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	result.Dropped = len(errs)
	return result, errs
}

func normalizeRow(s *Schema, row model.RawRow) (model.NormalizedRecord, *NormalizationError) {
	r := rowReader{schema: s, row: row}
	rec := model.NormalizedRecord{Ticker: row.Ticker}

	var err error
	if rec.Symbol, err = r.str(model.ColName); err != nil {
		return rec, r.fail(model.ColName, err)
	}
	if rec.Company, err = r.str(model.ColDescription); err != nil {
		return rec, r.fail(model.ColDescription, err)
	}
	if rec.Price, err = r.dec(model.ColClose); err != nil {
		return rec, r.fail(model.ColClose, err)
	}
	change, err := r.dec(model.ColChange)
	if err != nil {
		return rec, r.fail(model.ColChange, err)
	}
	rec.Change = model.NewSignedPercent(change)
	if rec.Volume, err = r.integer(model.ColVolume); err != nil {
		return rec, r.fail(model.ColVolume, err)
	}
	if rec.RelativeVolume, err = r.dec(model.ColRelativeVolume); err != nil {
		return rec, r.fail(model.ColRelativeVolume, err)
	}
	if rec.MarketCap, err = r.integer(model.ColMarketCap); err != nil {
		return rec, r.fail(model.ColMarketCap, err)
	}
	if rec.Sector, err = r.str(model.ColSector); err != nil {
		return rec, r.fail(model.ColSector, err)
	}
	if rec.Exchange, err = r.str(model.ColExchange); err != nil {
		return rec, r.fail(model.ColExchange, err)
	}

	if s.HasPremarket() {
		pmClose, present, err := r.optionalDec(model.ColPremarketClose)
		if err != nil {
			return rec, r.fail(model.ColPremarketClose, err)
		}
		pm := PremarketChange(rec.Price, pmClose, present)
		rec.PremarketChange = &pm
	}
	return rec, nil
}

// rowReader reads typed values from a positional row through the schema.
type rowReader struct {
	schema *Schema
	row    model.RawRow
}

func (r rowReader) fail(field string, err error) *NormalizationError {
	return &NormalizationError{Profile: r.schema.Profile, Field: field, Err: err}
}

// value returns the raw value of a column. present is false when the row is too
// short to hold it.
func (r rowReader) value(field string) (v gjson.Result, present bool) {
	i, ok := r.schema.Index(field)
	if !ok || i >= len(r.row.Values) {
		return gjson.Result{}, false
	}
	return r.row.Values[i], true
}

func (r rowReader) str(field string) (string, error) {
	v, present := r.value(field)
	if !present {
		return "", ErrMissingField
	}
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Null:
		if fields[field].nullable {
			return "", nil
		}
	}
	return "", fmt.Errorf("%w: want string, got %s", ErrWrongType, v.Type)
}

func (r rowReader) dec(field string) (decimal.Decimal, error) {
	v, present := r.value(field)
	if !present {
		return decimal.Zero, ErrMissingField
	}
	return toDecimal(v)
}

func (r rowReader) integer(field string) (int64, error) {
	d, err := r.dec(field)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

// optionalDec reads a nullable decimal that trailing-short rows may omit.
func (r rowReader) optionalDec(field string) (d decimal.Decimal, present bool, err error) {
	v, ok := r.value(field)
	if !ok || v.Type == gjson.Null {
		return decimal.Zero, false, nil
	}
	d, err = toDecimal(v)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func toDecimal(v gjson.Result) (decimal.Decimal, error) {
	if v.Type != gjson.Number {
		return decimal.Zero, fmt.Errorf("%w: want number, got %s", ErrWrongType, v.Type)
	}
	d, err := decimal.NewFromString(v.Raw)
	if err != nil {
		return decimal.NewFromFloat(v.Num), nil
	}
	return d, nil
}
