package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vehicle field names, which are also the model's numeric column names
const (
	FieldYear             = "Year"
	FieldKilometersDriven = "Kilometers_Driven"
	FieldFuelType         = "Fuel_Type"
	FieldTransmission     = "Transmission"
	FieldOwnerType        = "Owner_Type"
	FieldMileage          = "Mileage"
	FieldEngine           = "Engine"
	FieldPower            = "Power"
	FieldSeats            = "Seats"
	FieldTax              = "Tax"
	FieldBrand            = "Brand"
	FieldCarAge           = "Car_Age"
	FieldBHPPerCC         = "BHP_per_CC"
)

const (
	MinVehicleYear = 1990

	defaultFloatPrecision = 2
	maxKilometersDriven   = 500000
)

// CategoricalFields are the enum fields the model sees as indicator columns
var CategoricalFields = []string{FieldFuelType, FieldTransmission, FieldOwnerType, FieldBrand}

// Categorical option lists
var (
	FuelTypes     = []string{"Petrol", "Diesel", "CNG", "LPG", "Electric"}
	Transmissions = []string{"Manual", "Automatic"}
	OwnerTypes    = []string{"First", "Second", "Third", "Fourth & Above"}
)

// FieldKind is the input type of a form field
type FieldKind string

const (
	FieldKindInt   FieldKind = "int"
	FieldKindFloat FieldKind = "float"
	FieldKindEnum  FieldKind = "enum"
)

// FieldSpec describes one user-entered field: its type, bounds and default
type FieldSpec struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Min      float64   `json:"min,omitempty"`
	Max      float64   `json:"max,omitempty"`
	Step     float64   `json:"step,omitempty"`
	Default  string    `json:"default"`
	Options  []string  `json:"options,omitempty"`
	Optional bool      `json:"optional,omitempty"`
}

// VehicleFields returns the field table for the given calendar year. The
// brand field is only included when brands is non-empty and defaults to the
// first brand listed.
func VehicleFields(currentYear int, brands []string) []FieldSpec {
	specs := []FieldSpec{
		{Name: FieldYear, Label: "Year of Manufacture", Kind: FieldKindInt, Min: MinVehicleYear, Max: float64(currentYear), Step: 1, Default: "2015"},
		{Name: FieldKilometersDriven, Label: "Kilometers Driven", Kind: FieldKindInt, Min: 0, Max: maxKilometersDriven, Step: 1000, Default: "50000"},
		{Name: FieldFuelType, Label: "Fuel Type", Kind: FieldKindEnum, Default: "Petrol", Options: FuelTypes},
		{Name: FieldTransmission, Label: "Transmission", Kind: FieldKindEnum, Default: "Manual", Options: Transmissions},
		{Name: FieldOwnerType, Label: "Owner Type", Kind: FieldKindEnum, Default: "First", Options: OwnerTypes},
		{Name: FieldMileage, Label: "Mileage (km/l)", Kind: FieldKindFloat, Min: 5, Max: 40, Step: 0.1, Default: "18"},
		{Name: FieldEngine, Label: "Engine (CC)", Kind: FieldKindInt, Min: 600, Max: 6000, Step: 100, Default: "1500"},
		{Name: FieldPower, Label: "Power (bhp)", Kind: FieldKindFloat, Min: 20, Max: 600, Step: 1, Default: "100"},
		{Name: FieldSeats, Label: "Seats", Kind: FieldKindInt, Min: 2, Max: 14, Step: 1, Default: "5"},
		{Name: FieldTax, Label: "Tax", Kind: FieldKindFloat, Min: 0, Max: 50000, Step: 1, Default: "10"},
	}

	if len(brands) > 0 {
		specs = append(specs, FieldSpec{
			Name:     FieldBrand,
			Label:    "Brand",
			Kind:     FieldKindEnum,
			Default:  brands[0],
			Options:  append([]string(nil), brands...),
			Optional: true,
		})
	}

	return specs
}

// FindField looks up a spec by name
func FindField(specs []FieldSpec, name string) (FieldSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Parse converts user text into a checked value
func (f FieldSpec) Parse(text string) (Value, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Value{}, fmt.Errorf("%s is required", f.Name)
	}

	var v Value
	switch f.Kind {
	case FieldKindEnum:
		v = Category(text)
	case FieldKindInt, FieldKindFloat:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%s must be a number, got %q", f.Name, text)
		}
		v = Number(n)
	default:
		return Value{}, fmt.Errorf("%s has unknown kind %q", f.Name, f.Kind)
	}

	if err := f.Check(v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Check validates a value against the field's kind, bounds and options
func (f FieldSpec) Check(v Value) error {
	switch f.Kind {
	case FieldKindEnum:
		s, ok := v.Text()
		if !ok {
			return fmt.Errorf("%s must be one of %s", f.Name, strings.Join(f.Options, ", "))
		}
		for _, opt := range f.Options {
			if opt == s {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %s, got %q", f.Name, strings.Join(f.Options, ", "), s)

	case FieldKindInt, FieldKindFloat:
		n, ok := v.Float()
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%s must be a number", f.Name)
		}
		if f.Kind == FieldKindInt && n != math.Trunc(n) {
			return fmt.Errorf("%s must be a whole number, got %s", f.Name, v)
		}
		if n < f.Min || n > f.Max {
			return fmt.Errorf("%s must be between %s and %s, got %s", f.Name, f.format(f.Min), f.format(f.Max), v)
		}
		return nil
	}

	return fmt.Errorf("%s has unknown kind %q", f.Name, f.Kind)
}

// DefaultValue returns the parsed default
func (f FieldSpec) DefaultValue() Value {
	v, err := f.Parse(f.Default)
	if err != nil {
		return Value{}
	}
	return v
}

// Describe renders the accepted range or options for help text
func (f FieldSpec) Describe() string {
	if f.Kind == FieldKindEnum {
		return strings.Join(f.Options, " | ")
	}
	return fmt.Sprintf("%s to %s", f.format(f.Min), f.format(f.Max))
}

func (f FieldSpec) format(n float64) string {
	if f.Kind == FieldKindInt {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FormatValue renders a value with the field's precision
func (f FieldSpec) FormatValue(v Value) string {
	n, ok := v.Float()
	if !ok {
		return v.String()
	}
	if f.Kind == FieldKindInt {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', defaultFloatPrecision, 64)
}
