package schema

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"

	"github.com/mimir-aip/carprice/pkg/features"
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYear = 2025

var trainedColumns = []string{
	"Year", "Kilometers_Driven", "Mileage", "Engine", "Power", "Seats", "Car_Age", "BHP_per_CC",
	"Fuel_Type_CNG", "Fuel_Type_Diesel", "Fuel_Type_LPG", "Fuel_Type_Petrol",
	"Transmission_Automatic", "Transmission_Manual",
	"Owner_Type_First", "Owner_Type_Fourth & Above", "Owner_Type_Second", "Owner_Type_Third",
	"Brand_Honda", "Brand_Hyundai", "Brand_Lexus", "Brand_Maruti", "Brand_Toyota",
}

func quietLogger() *logging.Logger {
	l := logging.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

func newTestAligner() *Aligner {
	return NewAligner(Options{Logger: quietLogger()})
}

func derive(values map[string]models.Value) models.DerivedFeatureSet {
	d := features.NewDeriverWithClock(func() time.Time {
		return time.Date(testYear, time.March, 10, 0, 0, 0, 0, time.UTC)
	})
	return d.Derive(models.NewRawFeatureSet(values))
}

func marutiDiesel() map[string]models.Value {
	return map[string]models.Value{
		models.FieldYear:             models.Number(2018),
		models.FieldKilometersDriven: models.Number(40000),
		models.FieldFuelType:         models.Category("Diesel"),
		models.FieldTransmission:     models.Category("Manual"),
		models.FieldOwnerType:        models.Category("First"),
		models.FieldMileage:          models.Number(20),
		models.FieldEngine:           models.Number(1200),
		models.FieldPower:            models.Number(85),
		models.FieldSeats:            models.Number(5),
		models.FieldBrand:            models.Category("Maruti"),
	}
}

func rowValue(t *testing.T, row *models.AlignedRow, name string) float64 {
	t.Helper()
	v, ok := row.Value(name)
	require.True(t, ok, "row has no column %s", name)
	return v
}

func TestAlignMarutiDiesel(t *testing.T) {
	schema := models.NewExpectedSchema(trainedColumns)
	row, err := newTestAligner().Align(derive(marutiDiesel()), schema)
	require.NoError(t, err)

	assert.Equal(t, trainedColumns, row.Columns())
	assert.Equal(t, 1.0, rowValue(t, row, "Fuel_Type_Diesel"))
	assert.Equal(t, 0.0, rowValue(t, row, "Fuel_Type_Petrol"))
	assert.Equal(t, 1.0, rowValue(t, row, "Brand_Maruti"))
	assert.Equal(t, float64(testYear-2018), rowValue(t, row, "Car_Age"))
	assert.InDelta(t, 85.0/1200.0, rowValue(t, row, "BHP_per_CC"), 1e-12)

	for _, col := range []string{"Brand_Honda", "Brand_Hyundai", "Brand_Lexus", "Brand_Toyota", "Fuel_Type_CNG", "Fuel_Type_LPG"} {
		assert.Equal(t, 0.0, rowValue(t, row, col), col)
	}
}

func TestAlignFillsAbsentColumns(t *testing.T) {
	schema := models.NewExpectedSchema(trainedColumns)
	row, err := newTestAligner().Align(derive(marutiDiesel()), schema)
	require.NoError(t, err)

	assert.Equal(t, 0.0, rowValue(t, row, "Brand_Lexus"))
	assert.Contains(t, row.Filled(), "Brand_Lexus")
	assert.NotContains(t, row.Filled(), "Brand_Maruti")
}

func TestAlignDropsExtraColumns(t *testing.T) {
	schema := models.NewExpectedSchema([]string{"Power", "Year", "Fuel_Type_Diesel"})
	values := marutiDiesel()
	values[models.FieldTax] = models.Number(145)

	row, err := newTestAligner().Align(derive(values), schema)
	require.NoError(t, err)

	assert.Equal(t, []string{"Power", "Year", "Fuel_Type_Diesel"}, row.Columns())
	assert.Equal(t, []float64{85, 2018, 1}, row.Values())
	assert.Contains(t, row.Dropped(), "Tax")
	assert.Contains(t, row.Dropped(), "Brand_Maruti")
	assert.Contains(t, row.Dropped(), "Car_Age")
}

// TestAlignWidthAndOrder runs the pipeline over inputs spread across the
// field bounds and checks the row always matches the schema exactly.
func TestAlignWidthAndOrder(t *testing.T) {
	schema := models.NewExpectedSchema(trainedColumns)
	aligner := newTestAligner()
	specs := models.VehicleFields(testYear, []string{"Honda", "Hyundai", "Maruti", "Toyota"})

	for i := 0; i < 25; i++ {
		values := map[string]models.Value{}
		for _, spec := range specs {
			if spec.Kind == models.FieldKindEnum {
				values[spec.Name] = models.Category(spec.Options[i%len(spec.Options)])
				continue
			}
			n := spec.Min + (spec.Max-spec.Min)*float64(i)/24
			if spec.Kind == models.FieldKindInt {
				n = math.Round(n)
			}
			values[spec.Name] = models.Number(n)
		}

		row, err := aligner.Align(derive(values), schema)
		require.NoError(t, err)
		require.NoError(t, row.Conforms(schema))
		assert.Equal(t, schema.Len(), row.Width())
		assert.Equal(t, trainedColumns, row.Columns())

		// Exactly one indicator per fully-trained family is set.
		for _, family := range []string{"Transmission_", "Owner_Type_"} {
			sum := 0.0
			for _, col := range schema.WithPrefix(family) {
				sum += rowValue(t, row, col)
			}
			assert.Equal(t, 1.0, sum, "family %s at step %d", family, i)
		}
	}
}

func TestAlignUntrainedCategoryLeavesFamilyZero(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger()
	logger.SetOutput(&buf)

	values := marutiDiesel()
	values[models.FieldFuelType] = models.Category("Electric")

	row, err := NewAligner(Options{Logger: logger}).Align(derive(values), models.NewExpectedSchema(trainedColumns))
	require.NoError(t, err)

	for _, col := range []string{"Fuel_Type_CNG", "Fuel_Type_Diesel", "Fuel_Type_LPG", "Fuel_Type_Petrol"} {
		assert.Equal(t, 0.0, rowValue(t, row, col))
	}
	assert.Contains(t, row.Dropped(), "Fuel_Type_Electric")
	assert.Contains(t, buf.String(), "column=Fuel_Type_Electric")
}

func TestAlignOneHotValuesAreVerbatim(t *testing.T) {
	values := marutiDiesel()
	values[models.FieldOwnerType] = models.Category("Fourth & Above")

	row, err := newTestAligner().Align(derive(values), models.NewExpectedSchema(trainedColumns))
	require.NoError(t, err)
	assert.Equal(t, 1.0, rowValue(t, row, "Owner_Type_Fourth & Above"))
	assert.Equal(t, 0.0, rowValue(t, row, "Owner_Type_First"))
}

func TestAlignCustomSeparator(t *testing.T) {
	aligner := NewAligner(Options{Separator: "=", Logger: quietLogger()})
	schema := models.NewExpectedSchema([]string{"Fuel_Type=Diesel", "Fuel_Type_Diesel"})

	row, err := aligner.Align(derive(marutiDiesel()), schema)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, row.Values())
	assert.Equal(t, "=", aligner.Separator())
}

func TestAlignLabelEncoding(t *testing.T) {
	aligner := NewAligner(Options{
		Logger: quietLogger(),
		Label: map[string]map[string]float64{
			models.FieldTransmission: {"Manual": 0, "Automatic": 1},
			models.FieldOwnerType:    {"First": 1, "Second": 2, "Third": 3, "Fourth & Above": 4},
		},
	})
	schema := models.NewExpectedSchema([]string{"Transmission", "Owner_Type", "Fuel_Type_Diesel"})

	values := marutiDiesel()
	values[models.FieldTransmission] = models.Category("Automatic")
	row, err := aligner.Align(derive(values), schema)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, row.Values())

	values[models.FieldOwnerType] = models.Category("Fifth")
	_, err = aligner.Align(derive(values), schema)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAlignErrors(t *testing.T) {
	aligner := newTestAligner()
	schema := models.NewExpectedSchema(trainedColumns)

	t.Run("empty schema", func(t *testing.T) {
		_, err := aligner.Align(derive(marutiDiesel()), models.ExpectedSchema{})
		assert.ErrorIs(t, err, ErrSchemaUnavailable)
	})

	t.Run("invalid value", func(t *testing.T) {
		values := marutiDiesel()
		values[models.FieldSeats] = models.Value{}
		_, err := aligner.Align(derive(values), schema)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("non-finite number", func(t *testing.T) {
		values := marutiDiesel()
		values[models.FieldMileage] = models.Number(math.Inf(1))
		_, err := aligner.Align(derive(values), schema)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("schema wants raw categorical", func(t *testing.T) {
		_, err := aligner.Align(derive(marutiDiesel()), models.NewExpectedSchema([]string{"Year", "Fuel_Type"}))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.ErrorContains(t, err, `"Fuel_Type"`)
	})

	t.Run("schema wants raw categorical the request left out", func(t *testing.T) {
		values := marutiDiesel()
		delete(values, models.FieldBrand)
		_, err := aligner.Align(derive(values), models.NewExpectedSchema([]string{"Year", "Brand"}))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.ErrorContains(t, err, `"Brand"`)
	})

	t.Run("duplicate column", func(t *testing.T) {
		values := marutiDiesel()
		values["Fuel_Type_Diesel"] = models.Number(3)
		_, err := aligner.Align(derive(values), schema)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestAlignLogsColumnsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger()
	logger.SetOutput(&buf)
	logger.SetLevel(logging.DEBUG)

	_, err := NewAligner(Options{Logger: logger}).Align(derive(marutiDiesel()), models.NewExpectedSchema([]string{"Year", "Power"}))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "aligned feature row")
	assert.Contains(t, buf.String(), "component=aligner")
	assert.Contains(t, buf.String(), "names=Year,Power")
}

func TestDomain(t *testing.T) {
	aligner := newTestAligner()
	schema := models.NewExpectedSchema(trainedColumns)

	assert.Equal(t, []string{"Honda", "Hyundai", "Lexus", "Maruti", "Toyota"}, aligner.Domain(schema, models.FieldBrand))
	assert.Equal(t, []string{"Automatic", "Manual"}, aligner.Domain(schema, models.FieldTransmission))
	assert.Empty(t, aligner.Domain(models.NewExpectedSchema([]string{"Year"}), models.FieldBrand))
}

func TestAlignCategoricalOverride(t *testing.T) {
	values := marutiDiesel()
	delete(values, models.FieldBrand)
	schema := models.NewExpectedSchema([]string{"Year", "Brand"})

	aligner := NewAligner(Options{Logger: quietLogger(), Categorical: []string{models.FieldFuelType}})
	row, err := aligner.Align(derive(values), schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brand"}, row.Filled())

	labelled := NewAligner(Options{
		Logger: quietLogger(),
		Label:  map[string]map[string]float64{models.FieldBrand: {"Maruti": 1}},
	})
	row, err = labelled.Align(derive(values), schema)
	require.NoError(t, err, "label-encoded fields may appear bare")
	assert.Equal(t, 0.0, rowValue(t, row, "Brand"))
}
