// Package schema turns derived vehicle features into the exact column layout
// a trained model expects.
package schema

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
)

// DefaultSeparator joins a categorical field and its value in indicator
// column names, e.g. Fuel_Type_Diesel.
const DefaultSeparator = "_"

var (
	// ErrSchemaUnavailable means there is no expected schema to align to
	ErrSchemaUnavailable = errors.New("expected schema unavailable")
	// ErrTypeMismatch means a feature cannot be turned into a numeric column
	ErrTypeMismatch = errors.New("feature type mismatch")
	// ErrMisaligned means the built row does not match the schema
	ErrMisaligned = errors.New("aligned row does not match schema")
)

// Options configures an Aligner
type Options struct {
	// Separator between field and value in indicator names. Defaults to "_".
	Separator string
	// Label maps categorical fields to numeric codes. Fields listed here are
	// not one-hot expanded.
	Label map[string]map[string]float64
	// Categorical names the one-hot encoded fields. Their bare names are
	// never valid schema columns, even when a request leaves the field out.
	// Defaults to models.CategoricalFields; label-encoded fields are exempt.
	Categorical []string
	// Logger receives the aligned columns at debug level
	Logger *logging.Logger
}

// Aligner reindexes feature sets against an expected schema. It holds no
// per-request state and is safe for concurrent use.
type Aligner struct {
	sep         string
	label       map[string]map[string]float64
	categorical map[string]bool
	logger      *logging.FieldLogger
}

// NewAligner creates an aligner
func NewAligner(opts Options) *Aligner {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	label := make(map[string]map[string]float64, len(opts.Label))
	for field, codes := range opts.Label {
		copied := make(map[string]float64, len(codes))
		for k, v := range codes {
			copied[k] = v
		}
		label[field] = copied
	}

	names := opts.Categorical
	if names == nil {
		names = models.CategoricalFields
	}
	categorical := make(map[string]bool, len(names))
	for _, name := range names {
		if _, labelled := label[name]; !labelled {
			categorical[name] = true
		}
	}

	return &Aligner{
		sep:         sep,
		label:       label,
		categorical: categorical,
		logger:      logger.WithFields(logging.Component("aligner")),
	}
}

// Separator returns the indicator separator in use
func (a *Aligner) Separator() string {
	return a.sep
}

// IndicatorName returns the one-hot column name for a field value
func (a *Aligner) IndicatorName(field, value string) string {
	return field + a.sep + value
}

// Domain lists the values of field that have an indicator column in the
// schema, sorted.
func (a *Aligner) Domain(schema models.ExpectedSchema, field string) []string {
	prefix := field + a.sep
	var values []string
	for _, col := range schema.WithPrefix(prefix) {
		if v := strings.TrimPrefix(col, prefix); v != "" {
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}

// Align builds the model row for features. Numeric fields keep their names,
// categorical fields become indicator columns (or label codes), schema
// columns without a candidate are 0 and candidates the schema does not name
// are dropped.
func (a *Aligner) Align(features models.DerivedFeatureSet, schema models.ExpectedSchema) (*models.AlignedRow, error) {
	if schema.Empty() {
		return nil, ErrSchemaUnavailable
	}

	candidates, expanded, err := a.candidates(features)
	if err != nil {
		return nil, err
	}

	columns := schema.Columns()
	values := make([]float64, len(columns))
	used := make(map[string]bool, len(columns))
	var filled []string

	for i, col := range columns {
		if _, ok := expanded[col]; ok || a.categorical[col] {
			return nil, fmt.Errorf("%w: schema expects a numeric %q but the field is categorical and one-hot encoded", ErrTypeMismatch, col)
		}
		v, ok := candidates[col]
		if !ok {
			filled = append(filled, col)
			continue
		}
		values[i] = v
		used[col] = true
	}

	var dropped []string
	for name := range candidates {
		if !used[name] {
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)

	for field, indicator := range expanded {
		if !used[indicator] && len(schema.WithPrefix(field+a.sep)) > 0 {
			a.logger.Warn("indicator column not in schema, all siblings left at 0",
				logging.String("field", field),
				logging.String("column", indicator))
		}
	}

	row := models.NewAlignedRow(columns, values, dropped, filled)
	if err := row.Conforms(schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMisaligned, err)
	}

	a.logger.Debug("aligned feature row",
		logging.Int("columns", row.Width()),
		logging.Strings("names", columns),
		logging.Strings("dropped", dropped),
		logging.Strings("filled", filled))

	return row, nil
}

// candidates expands features into named numeric columns. expanded maps each
// one-hot encoded field name to the indicator column it produced.
func (a *Aligner) candidates(features models.DerivedFeatureSet) (map[string]float64, map[string]string, error) {
	candidates := make(map[string]float64, features.Len())
	expanded := make(map[string]string)

	put := func(name, source string, v float64) error {
		if _, exists := candidates[name]; exists {
			return fmt.Errorf("%w: column %q is produced twice (by %q)", ErrTypeMismatch, name, source)
		}
		candidates[name] = v
		return nil
	}

	for _, name := range features.Names() {
		value, _ := features.Get(name)

		switch value.Kind() {
		case models.KindNumber:
			n, _ := value.Float()
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, nil, fmt.Errorf("%w: %s is not a finite number", ErrTypeMismatch, name)
			}
			if err := put(name, name, n); err != nil {
				return nil, nil, err
			}

		case models.KindCategory:
			text, _ := value.Text()
			if codes, ok := a.label[name]; ok {
				code, known := codes[text]
				if !known {
					return nil, nil, fmt.Errorf("%w: %s has no label code for %q", ErrTypeMismatch, name, text)
				}
				if err := put(name, name, code); err != nil {
					return nil, nil, err
				}
				continue
			}
			indicator := a.IndicatorName(name, text)
			if err := put(indicator, name, 1); err != nil {
				return nil, nil, err
			}
			expanded[name] = indicator

		default:
			return nil, nil, fmt.Errorf("%w: %s has no usable value", ErrTypeMismatch, name)
		}
	}

	return candidates, expanded, nil
}
