package models

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRequest(t *testing.T, body string) *EstimateRequest {
	t.Helper()
	var req EstimateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestEstimateRequestValidate(t *testing.T) {
	specs := VehicleFields(2026, []string{"Maruti", "Honda"})

	tests := []struct {
		name    string
		body    string
		errPart []string
	}{
		{"empty body uses defaults", `{}`, nil},
		{"full request", `{"Year":2018,"Kilometers_Driven":0,"Fuel_Type":"Diesel","Transmission":"Automatic",
			"Owner_Type":"Second","Mileage":21.1,"Engine":1248,"Power":74,"Seats":5,"Tax":145,"Brand":"Maruti"}`, nil},
		{"future year", `{"Year":2030}`, []string{"Year must be between 1990 and 2026"}},
		{"negative kilometers", `{"Kilometers_Driven":-1}`, []string{"Kilometers_Driven must be between"}},
		{"unknown fuel", `{"Fuel_Type":"Hydrogen"}`, []string{"Fuel_Type must be one of"}},
		{"unknown brand", `{"Brand":"Lexus"}`, []string{"Brand must be one of"}},
		{"several errors", `{"Seats":1,"Transmission":"CVT"}`, []string{"Seats must be between", "Transmission must be one of"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeRequest(t, tt.body).Validate(specs)
			if len(tt.errPart) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, part := range tt.errPart {
				assert.Contains(t, err.Error(), part)
			}
		})
	}
}

func TestEstimateRequestBrandWithoutField(t *testing.T) {
	specs := VehicleFields(2026, nil)
	err := decodeRequest(t, `{"Brand":"Maruti"}`).Validate(specs)
	assert.ErrorContains(t, err, "Brand is not accepted")
}

func TestEstimateRequestToRaw(t *testing.T) {
	specs := VehicleFields(2026, []string{"Maruti"})
	raw := decodeRequest(t, `{"Year":2019,"Fuel_Type":"Diesel","Kilometers_Driven":0}`).ToRaw(specs)

	year, _ := raw.Get(FieldYear)
	assert.Equal(t, "2019", year.String())
	km, _ := raw.Get(FieldKilometersDriven)
	assert.Equal(t, "0", km.String())
	fuel, _ := raw.Get(FieldFuelType)
	assert.Equal(t, "Diesel", fuel.String())

	tax, ok := raw.Get(FieldTax)
	require.True(t, ok, "omitted fields take defaults")
	assert.Equal(t, "10", tax.String())

	_, ok = raw.Get(FieldBrand)
	assert.False(t, ok, "an empty brand stays out of the feature set")
	assert.Equal(t, 10, raw.Len())

	withBrand := decodeRequest(t, `{"Brand":"Maruti"}`).ToRaw(specs)
	brand, ok := withBrand.Get(FieldBrand)
	require.True(t, ok)
	assert.Equal(t, "Maruti", brand.String())
}

func TestNewRequestValidator(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newRequestValidator() })

	specs := VehicleFields(2026, nil)
	ctx := context.WithValue(context.Background(), fieldSpecsKey{}, specs)
	seats := 40.0
	err := v.StructCtx(ctx, &EstimateRequest{Seats: &seats})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "Seats", verrs[0].Field())
	assert.Equal(t, "vehicle", verrs[0].Tag())
}
