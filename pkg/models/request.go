package models

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type fieldSpecsKey struct{}

// requestValidate is shared by all estimate requests. The field table is
// passed per call through the context because the year bound and brand
// options change at runtime.
var requestValidate *validator.Validate

func init() {
	requestValidate = newRequestValidator()
}

// newRequestValidator builds the validator with the vehicle rule. It panics
// when the rule cannot be registered.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidationCtx("vehicle", validateVehicleField); err != nil {
		panic(fmt.Sprintf("failed to register vehicle validation: %v", err))
	}
	return v
}

// validateVehicleField checks a request field against the field table entry
// with the same name.
func validateVehicleField(ctx context.Context, fl validator.FieldLevel) bool {
	specs, _ := ctx.Value(fieldSpecsKey{}).([]FieldSpec)
	spec, ok := FindField(specs, fl.FieldName())
	if !ok {
		return false
	}
	v, ok := valueOf(fl.Field())
	if !ok {
		return false
	}
	return spec.Check(v) == nil
}

func valueOf(rv reflect.Value) (Value, bool) {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Value{}, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), true
	case reflect.String:
		return Category(strings.TrimSpace(rv.String())), true
	default:
		return Value{}, false
	}
}

// EstimateRequest is the JSON body of an estimate call. Omitted fields take
// their form default; Brand is left out of the features when empty.
type EstimateRequest struct {
	Year             *float64 `json:"Year,omitempty" validate:"omitempty,vehicle"`
	KilometersDriven *float64 `json:"Kilometers_Driven,omitempty" validate:"omitempty,vehicle"`
	FuelType         string   `json:"Fuel_Type,omitempty" validate:"omitempty,vehicle"`
	Transmission     string   `json:"Transmission,omitempty" validate:"omitempty,vehicle"`
	OwnerType        string   `json:"Owner_Type,omitempty" validate:"omitempty,vehicle"`
	Mileage          *float64 `json:"Mileage,omitempty" validate:"omitempty,vehicle"`
	Engine           *float64 `json:"Engine,omitempty" validate:"omitempty,vehicle"`
	Power            *float64 `json:"Power,omitempty" validate:"omitempty,vehicle"`
	Seats            *float64 `json:"Seats,omitempty" validate:"omitempty,vehicle"`
	Tax              *float64 `json:"Tax,omitempty" validate:"omitempty,vehicle"`
	Brand            string   `json:"Brand,omitempty" validate:"omitempty,vehicle"`
	Debug            bool     `json:"debug,omitempty"`
}

// Validate checks every provided field against specs
func (r *EstimateRequest) Validate(specs []FieldSpec) error {
	ctx := context.WithValue(context.Background(), fieldSpecsKey{}, specs)
	err := requestValidate.StructCtx(ctx, r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		spec, ok := FindField(specs, fe.Field())
		if !ok {
			messages = append(messages, fmt.Sprintf("%s is not accepted", fe.Field()))
			continue
		}
		v, ok := valueOf(reflect.ValueOf(fe.Value()))
		if !ok {
			messages = append(messages, fmt.Sprintf("%s has an unsupported type", fe.Field()))
			continue
		}
		if cerr := spec.Check(v); cerr != nil {
			messages = append(messages, cerr.Error())
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

// ToRaw builds the raw feature set, filling omitted fields with defaults
func (r *EstimateRequest) ToRaw(specs []FieldSpec) RawFeatureSet {
	provided := map[string]Value{}
	setNumber := func(name string, p *float64) {
		if p != nil {
			provided[name] = Number(*p)
		}
	}
	setCategory := func(name, s string) {
		if s = strings.TrimSpace(s); s != "" {
			provided[name] = Category(s)
		}
	}

	setNumber(FieldYear, r.Year)
	setNumber(FieldKilometersDriven, r.KilometersDriven)
	setCategory(FieldFuelType, r.FuelType)
	setCategory(FieldTransmission, r.Transmission)
	setCategory(FieldOwnerType, r.OwnerType)
	setNumber(FieldMileage, r.Mileage)
	setNumber(FieldEngine, r.Engine)
	setNumber(FieldPower, r.Power)
	setNumber(FieldSeats, r.Seats)
	setNumber(FieldTax, r.Tax)
	setCategory(FieldBrand, r.Brand)

	values := make(map[string]Value, len(specs))
	for _, spec := range specs {
		if v, ok := provided[spec.Name]; ok {
			values[spec.Name] = v
			continue
		}
		if spec.Optional {
			continue
		}
		values[spec.Name] = spec.DefaultValue()
	}
	return NewRawFeatureSet(values)
}
