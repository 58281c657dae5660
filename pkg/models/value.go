package models

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Kind tells whether a Value is numeric or categorical
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindCategory
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindCategory:
		return "category"
	default:
		return "invalid"
	}
}

// Value is a single feature value. The zero Value is invalid.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Number creates a numeric value
func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// Category creates a categorical value
func Category(s string) Value {
	return Value{kind: KindCategory, str: s}
}

// Kind returns the value kind
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric payload
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the categorical payload
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindCategory
}

// String renders the value for display
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindCategory:
		return v.str
	default:
		return "<invalid>"
	}
}

// MarshalJSON writes numbers as JSON numbers and categories as strings
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindCategory:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// FeatureSet is a read-only mapping from field name to value
type FeatureSet struct {
	values map[string]Value
}

func newFeatureSet(values map[string]Value, extra map[string]Value) FeatureSet {
	copied := make(map[string]Value, len(values)+len(extra))
	for name, value := range values {
		copied[name] = value
	}
	for name, value := range extra {
		copied[name] = value
	}
	return FeatureSet{values: copied}
}

// Get returns the value stored under name
func (fs FeatureSet) Get(name string) (Value, bool) {
	v, ok := fs.values[name]
	return v, ok
}

// Len returns the number of fields
func (fs FeatureSet) Len() int {
	return len(fs.values)
}

// Names returns the field names in sorted order
func (fs FeatureSet) Names() []string {
	names := make([]string, 0, len(fs.values))
	for name := range fs.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON writes the set as a JSON object
func (fs FeatureSet) MarshalJSON() ([]byte, error) {
	if fs.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(fs.values)
}

// RawFeatureSet holds one entry per user-entered field
type RawFeatureSet struct {
	FeatureSet
}

// NewRawFeatureSet copies values into a new raw set
func NewRawFeatureSet(values map[string]Value) RawFeatureSet {
	return RawFeatureSet{FeatureSet: newFeatureSet(values, nil)}
}

// Extend returns a derived set holding the raw fields plus computed ones
func (r RawFeatureSet) Extend(computed map[string]Value) DerivedFeatureSet {
	return DerivedFeatureSet{FeatureSet: newFeatureSet(r.values, computed)}
}

// DerivedFeatureSet is a raw set plus computed fields
type DerivedFeatureSet struct {
	FeatureSet
}
