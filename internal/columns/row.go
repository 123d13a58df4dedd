// Package columns implements the generic column row every mapping strategy
// reads from and writes to. A row is a flat set of named scalar columns
// (integer, float, text, bool, time) that is stored as one JSON document next
// to the entity's identity and type discriminator.
package columns

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Row is not safe for concurrent mutation.
type Row struct {
	values map[string]any
}

func NewRow() *Row {
	return &Row{values: map[string]any{}}
}

// Decode parses a stored column document. Empty input yields an empty row.
// Numbers keep their literal form so integer columns survive without float
// rounding.
func Decode(raw []byte) (*Row, error) {
	r := NewRow()
	if len(bytes.TrimSpace(raw)) == 0 {
		return r, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, &MappingError{Reason: "undecodable column document", Cause: err}
	}
	for col, v := range values {
		switch v.(type) {
		case nil, json.Number, string, bool:
			r.values[col] = v
		default:
			return nil, &MappingError{Column: col, Reason: fmt.Sprintf("non-scalar value %T", v)}
		}
	}
	return r, nil
}

// FromMap builds a row from externally decoded values (YAML or JSON import
// documents). Only scalars are accepted.
func FromMap(values map[string]any) (*Row, error) {
	r := NewRow()
	for col, v := range values {
		switch t := v.(type) {
		case nil:
			r.values[col] = nil
		case int:
			r.values[col] = int64(t)
		case int32:
			r.values[col] = int64(t)
		case int64:
			r.values[col] = t
		case uint64:
			if t > math.MaxInt64 {
				return nil, &MappingError{Column: col, Reason: "integer overflow"}
			}
			r.values[col] = int64(t)
		case float32:
			r.values[col] = float64(t)
		case float64, string, bool, json.Number:
			r.values[col] = t
		case time.Time:
			r.values[col] = t.UTC().Format(time.RFC3339Nano)
		default:
			return nil, &MappingError{Column: col, Reason: fmt.Sprintf("non-scalar value %T", v)}
		}
	}
	return r, nil
}

// Encode renders the row deterministically: equal content always produces
// identical bytes.
func (r *Row) Encode() ([]byte, error) {
	if r == nil || len(r.values) == 0 {
		return []byte("{}"), nil
	}
	for col, v := range r.values {
		if f, ok := v.(float64); ok && !finite(f) {
			return nil, nonFinite(col, f)
		}
	}
	return json.Marshal(r.values)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (r *Row) MarshalJSON() ([]byte, error) { return r.Encode() }

func (r *Row) UnmarshalJSON(raw []byte) error {
	decoded, err := Decode(raw)
	if err != nil {
		return err
	}
	r.values = decoded.values
	return nil
}

// Columns returns the column names in sorted order.
func (r *Row) Columns() []string {
	out := make([]string, 0, len(r.values))
	for col := range r.values {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

func (r *Row) Len() int { return len(r.values) }

func (r *Row) Has(col string) bool {
	v, ok := r.values[col]
	return ok && v != nil
}

// Equal compares by encoded content.
func (r *Row) Equal(other *Row) bool {
	a, errA := r.Encode()
	b, errB := other.Encode()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Values returns a copy of the raw column values.
func (r *Row) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r *Row) Delete(col string) { delete(r.values, col) }

func (r *Row) SetInt(col string, v int64)     { r.values[col] = v }
func (r *Row) SetFloat(col string, v float64) { r.values[col] = v }
func (r *Row) SetText(col string, v string)   { r.values[col] = v }
func (r *Row) SetBool(col string, v bool)     { r.values[col] = v }

// SetTime stores v in UTC with nanosecond precision.
func (r *Row) SetTime(col string, v time.Time) {
	r.values[col] = v.UTC().Format(time.RFC3339Nano)
}

func (r *Row) Int(col string) (int64, error) {
	v, ok, err := r.LookupInt(col)
	if err == nil && !ok {
		err = missing(col)
	}
	return v, err
}

func (r *Row) LookupInt(col string) (int64, bool, error) {
	raw, ok := r.values[col]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch t := raw.(type) {
	case int64:
		return t, true, nil
	case float64:
		if t != math.Trunc(t) {
			return 0, true, invalid(col, raw, "integer")
		}
		return int64(t), true, nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, true, &MappingError{Column: col, Reason: "expected integer", Cause: err}
		}
		return i, true, nil
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, true, &MappingError{Column: col, Reason: "expected integer", Cause: err}
		}
		return i, true, nil
	default:
		return 0, true, invalid(col, raw, "integer")
	}
}

func (r *Row) Float(col string) (float64, error) {
	v, ok, err := r.LookupFloat(col)
	if err == nil && !ok {
		err = missing(col)
	}
	return v, err
}

func (r *Row) LookupFloat(col string) (float64, bool, error) {
	raw, ok := r.values[col]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch t := raw.(type) {
	case float64:
		return t, true, nil
	case int64:
		return float64(t), true, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, true, &MappingError{Column: col, Reason: "expected float", Cause: err}
		}
		return f, true, nil
	default:
		return 0, true, invalid(col, raw, "float")
	}
}

func (r *Row) Text(col string) (string, error) {
	v, ok, err := r.LookupText(col)
	if err == nil && !ok {
		err = missing(col)
	}
	return v, err
}

func (r *Row) LookupText(col string) (string, bool, error) {
	raw, ok := r.values[col]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, isText := raw.(string)
	if !isText {
		return "", true, invalid(col, raw, "text")
	}
	return s, true, nil
}

func (r *Row) Bool(col string) (bool, error) {
	v, ok, err := r.LookupBool(col)
	if err == nil && !ok {
		err = missing(col)
	}
	return v, err
}

func (r *Row) LookupBool(col string) (bool, bool, error) {
	raw, ok := r.values[col]
	if !ok || raw == nil {
		return false, false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, true, invalid(col, raw, "bool")
	}
	return b, true, nil
}

func (r *Row) Time(col string) (time.Time, error) {
	v, ok, err := r.LookupTime(col)
	if err == nil && !ok {
		err = missing(col)
	}
	return v, err
}

func (r *Row) LookupTime(col string) (time.Time, bool, error) {
	s, ok, err := r.LookupText(col)
	if err != nil || !ok {
		if err != nil {
			err = invalid(col, r.values[col], "time")
		}
		return time.Time{}, ok, err
	}
	t, perr := time.Parse(time.RFC3339Nano, s)
	if perr != nil {
		return time.Time{}, true, &MappingError{Column: col, Reason: "expected RFC3339 time", Cause: perr}
	}
	return t.UTC(), true, nil
}
