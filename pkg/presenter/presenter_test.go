package presenter

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.PredictionResult {
	row := models.NewAlignedRow(
		[]string{"Year", "Car_Age", "Fuel_Type_Diesel"},
		[]float64{2018, 7, 1},
		[]string{"Tax"},
		nil,
	)
	return &models.PredictionResult{
		ID:        "est-1",
		Price:     5.254,
		Unit:      "Lakhs",
		ModelType: models.ModelTypeRandomForest,
		Row:       row,
		At:        time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "Estimated Price: 5.25 Lakhs", Headline(sampleResult()))
}

func TestTip(t *testing.T) {
	assert.Contains(t, Tip(models.FailureTypeMismatch), "does not match the data the model was trained on")
	assert.Equal(t, Tip(models.FailureTypeMismatch), Tip(models.FailurePrediction))
	assert.NotEmpty(t, Tip(models.FailureModelUnavailable))
	assert.NotEmpty(t, Tip(models.FailureSchemaUnavailable))
	assert.Empty(t, Tip(models.FailureInvalidInput))
}

func TestDebugRows(t *testing.T) {
	rows := DebugRows(sampleResult().Row)
	assert.Equal(t, [][2]string{
		{"Year", "2018"},
		{"Car_Age", "7"},
		{"Fuel_Type_Diesel", "1"},
	}, rows)
	assert.Nil(t, DebugRows(nil))
}

func TestTerminalResult(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewTerminal(&out, false).Result(sampleResult()))
	assert.Contains(t, out.String(), "Estimated Price: 5.25 Lakhs")
	assert.NotContains(t, out.String(), DebugTitle)

	out.Reset()
	require.NoError(t, NewTerminal(&out, true).Result(sampleResult()))
	assert.Contains(t, out.String(), DebugTitle)
	assert.Contains(t, out.String(), "Fuel_Type_Diesel")
	assert.Contains(t, out.String(), "est-1")
}

func TestTerminalFailure(t *testing.T) {
	scoring := models.NewFailure(models.FailureTypeMismatch, "This input could not be encoded.", errors.New("column produced twice"))
	setup := models.NewFailure(models.FailureModelUnavailable, "Model file not found.", errors.New("open model.json: no such file"))

	var out bytes.Buffer
	require.NoError(t, NewTerminal(&out, false).Failure(scoring))
	assert.Contains(t, out.String(), "This input could not be scored: Input could not be encoded")
	assert.Contains(t, out.String(), "Tip:")
	assert.NotContains(t, out.String(), "column produced twice")

	out.Reset()
	require.NoError(t, NewTerminal(&out, true).Failure(setup))
	assert.Contains(t, out.String(), "Setup problem: Model unavailable")
	assert.Contains(t, out.String(), "Model file not found.")
	assert.Contains(t, out.String(), "no such file")
}

func TestTerminalSchema(t *testing.T) {
	var out bytes.Buffer
	err := NewTerminal(&out, false).Schema([]string{"Year", "Brand_Audi"}, "model", []string{"Audi"}, true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Expected schema (model, 2 columns)")
	assert.Contains(t, out.String(), "Brand_Audi")
	assert.Contains(t, out.String(), "Brands (model columns): Audi")

	out.Reset()
	require.NoError(t, NewTerminal(&out, false).Schema(nil, "fallback", []string{"Tata", "Ford"}, false))
	assert.Contains(t, out.String(), "Brands (fallback list): Tata, Ford")
}
