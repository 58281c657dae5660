package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrRowMismatch is returned when an aligned row does not match its schema
var ErrRowMismatch = errors.New("aligned row does not match schema")

// ExpectedSchema is the ordered list of columns a model was trained on
type ExpectedSchema struct {
	columns []string
}

// NewExpectedSchema copies columns into a read-only schema
func NewExpectedSchema(columns []string) ExpectedSchema {
	return ExpectedSchema{columns: append([]string(nil), columns...)}
}

// Columns returns a copy of the column names in order
func (s ExpectedSchema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of columns
func (s ExpectedSchema) Len() int {
	return len(s.columns)
}

// Empty reports whether the schema has no columns
func (s ExpectedSchema) Empty() bool {
	return len(s.columns) == 0
}

// Contains reports whether name is one of the columns
func (s ExpectedSchema) Contains(name string) bool {
	for _, c := range s.columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithPrefix returns the columns starting with prefix, in schema order
func (s ExpectedSchema) WithPrefix(prefix string) []string {
	var matched []string
	for _, c := range s.columns {
		if strings.HasPrefix(c, prefix) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Validate checks for blank and duplicate column names
func (s ExpectedSchema) Validate() error {
	if len(s.columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]bool, len(s.columns))
	for i, c := range s.columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("schema column %d is blank", i)
		}
		if seen[c] {
			return fmt.Errorf("schema column %q appears more than once", c)
		}
		seen[c] = true
	}
	return nil
}

// MarshalJSON writes the schema as a JSON array
func (s ExpectedSchema) MarshalJSON() ([]byte, error) {
	if s.columns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.columns)
}

// AlignedRow is a single model input row laid out exactly like a schema
type AlignedRow struct {
	columns []string
	values  []float64
	dropped []string
	filled  []string
}

// NewAlignedRow copies its arguments into an immutable row
func NewAlignedRow(columns []string, values []float64, dropped, filled []string) *AlignedRow {
	return &AlignedRow{
		columns: append([]string(nil), columns...),
		values:  append([]float64(nil), values...),
		dropped: append([]string(nil), dropped...),
		filled:  append([]string(nil), filled...),
	}
}

// Columns returns the column names in order
func (r *AlignedRow) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Values returns the column values in order
func (r *AlignedRow) Values() []float64 {
	return append([]float64(nil), r.values...)
}

// Width returns the number of columns
func (r *AlignedRow) Width() int {
	return len(r.columns)
}

// Value returns the value of the named column
func (r *AlignedRow) Value(name string) (float64, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return 0, false
}

// Dropped lists candidate columns the schema did not ask for
func (r *AlignedRow) Dropped() []string {
	return append([]string(nil), r.dropped...)
}

// Filled lists schema columns that had no candidate and were set to 0
func (r *AlignedRow) Filled() []string {
	return append([]string(nil), r.filled...)
}

// Conforms checks that the row has the schema's width and column order
func (r *AlignedRow) Conforms(schema ExpectedSchema) error {
	if len(r.values) != len(r.columns) {
		return fmt.Errorf("%w: %d values for %d columns", ErrRowMismatch, len(r.values), len(r.columns))
	}
	if len(r.columns) != schema.Len() {
		return fmt.Errorf("%w: width %d, schema expects %d", ErrRowMismatch, len(r.columns), schema.Len())
	}
	for i, c := range schema.columns {
		if r.columns[i] != c {
			return fmt.Errorf("%w: column %d is %q, schema expects %q", ErrRowMismatch, i, r.columns[i], c)
		}
	}
	return nil
}

type alignedRowJSON struct {
	Columns []string           `json:"columns"`
	Values  map[string]float64 `json:"values"`
	Dropped []string           `json:"dropped,omitempty"`
	Filled  []string           `json:"filled,omitempty"`
}

// MarshalJSON writes the ordered columns and a name-to-value map
func (r *AlignedRow) MarshalJSON() ([]byte, error) {
	values := make(map[string]float64, len(r.columns))
	for i, c := range r.columns {
		values[c] = r.values[i]
	}
	return json.Marshal(alignedRowJSON{
		Columns: r.Columns(),
		Values:  values,
		Dropped: r.dropped,
		Filled:  r.filled,
	})
}
