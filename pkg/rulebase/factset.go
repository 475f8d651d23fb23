package rulebase

import (
	"sort"
	"strconv"
)

// FactSet is an immutable mapping of field name to value for one request.
// Values are either textual (string) or numeric (any Go numeric type, or a
// numeric string). A FactSet is never mutated after creation; With returns
// a copy with one additional field.
type FactSet struct {
	values map[string]interface{}
}

// NewFactSet creates a FactSet from a map. The map is copied, so later
// changes to the caller's map do not affect the FactSet.
func NewFactSet(values map[string]interface{}) (facts FactSet) {
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	facts = FactSet{values: copied}
	return facts
}

// With returns a new FactSet containing all existing fields plus the given
// field. The receiver is unchanged.
func (f FactSet) With(field string, value interface{}) (facts FactSet) {
	copied := make(map[string]interface{}, len(f.values)+1)
	for k, v := range f.values {
		copied[k] = v
	}
	copied[field] = value
	facts = FactSet{values: copied}
	return facts
}

// Get returns the raw value for a field.
func (f FactSet) Get(field string) (value interface{}, ok bool) {
	value, ok = f.values[field]
	return value, ok
}

// Has reports whether a field is known.
func (f FactSet) Has(field string) (ok bool) {
	_, ok = f.values[field]
	return ok
}

// Len returns the number of known fields.
func (f FactSet) Len() (n int) {
	n = len(f.values)
	return n
}

// Fields returns the known field names in sorted order.
func (f FactSet) Fields() (fields []string) {
	fields = make([]string, 0, len(f.values))
	for k := range f.values {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Text returns the field value as a string. Numeric values do not coerce.
func (f FactSet) Text(field string) (text string, ok bool) {
	value, present := f.values[field]
	if !present {
		return text, false
	}
	text, ok = value.(string)
	return text, ok
}

// Number returns the field value as a float64, coercing the common numeric
// types and numeric strings.
func (f FactSet) Number(field string) (number float64, ok bool) {
	value, present := f.values[field]
	if !present {
		return number, false
	}
	number, ok = coerceNumber(value)
	return number, ok
}

func coerceNumber(value interface{}) (number float64, ok bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
