package models

import (
	"encoding/json"
	"testing"
)

// TestValueKinds tests the tagged value constructors
func TestValueKinds(t *testing.T) {
	n := Number(18.5)
	if n.Kind() != KindNumber {
		t.Errorf("Expected kind %s, got %s", KindNumber, n.Kind())
	}
	if f, ok := n.Float(); !ok || f != 18.5 {
		t.Errorf("Expected 18.5, got %v (ok=%v)", f, ok)
	}
	if _, ok := n.Text(); ok {
		t.Error("Expected numeric value to have no text")
	}

	c := Category("Diesel")
	if s, ok := c.Text(); !ok || s != "Diesel" {
		t.Errorf("Expected Diesel, got %q (ok=%v)", s, ok)
	}

	var zero Value
	if zero.Kind() != KindInvalid {
		t.Errorf("Expected zero value to be invalid, got %s", zero.Kind())
	}
	if zero.String() != "<invalid>" {
		t.Errorf("Unexpected zero string %q", zero.String())
	}
}

// TestRawFeatureSetIsCopied tests that callers cannot mutate a built set
func TestRawFeatureSetIsCopied(t *testing.T) {
	input := map[string]Value{FieldYear: Number(2015)}
	raw := NewRawFeatureSet(input)
	input[FieldYear] = Number(1999)
	input[FieldPower] = Number(100)

	if v, _ := raw.Get(FieldYear); v.String() != "2015" {
		t.Errorf("Expected Year 2015, got %s", v)
	}
	if raw.Len() != 1 {
		t.Errorf("Expected 1 field, got %d", raw.Len())
	}
}

// TestExtend tests that derived sets keep raw fields and add computed ones
func TestExtend(t *testing.T) {
	raw := NewRawFeatureSet(map[string]Value{
		FieldYear:     Number(2015),
		FieldFuelType: Category("Petrol"),
	})
	derived := raw.Extend(map[string]Value{FieldCarAge: Number(10)})

	names := derived.Names()
	expected := []string{FieldCarAge, FieldFuelType, FieldYear}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, names[i])
		}
	}
	if _, ok := raw.Get(FieldCarAge); ok {
		t.Error("Extend must not modify the raw set")
	}
}

func TestFeatureSetJSON(t *testing.T) {
	raw := NewRawFeatureSet(map[string]Value{
		FieldSeats:    Number(5),
		FieldFuelType: Category("CNG"),
	})
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `{"Fuel_Type":"CNG","Seats":5}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var empty RawFeatureSet
	data, _ = json.Marshal(empty)
	if string(data) != "{}" {
		t.Errorf("Expected empty object, got %s", data)
	}
}
