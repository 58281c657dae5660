package mlmodel

import (
	"fmt"

	"github.com/mimir-aip/carprice/pkg/models"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression predicts intercept + coefficients . row
type LinearRegression struct {
	coefficients *mat.VecDense
	intercept    float64
}

// NewLinearRegression creates a linear model
func NewLinearRegression(coefficients []float64, intercept float64) (*LinearRegression, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("linear regression has no coefficients")
	}
	return &LinearRegression{
		coefficients: mat.NewVecDense(len(coefficients), append([]float64(nil), coefficients...)),
		intercept:    intercept,
	}, nil
}

// Predict scores a row
func (m *LinearRegression) Predict(row []float64) (float64, error) {
	n := m.coefficients.Len()
	if len(row) != n {
		return 0, fmt.Errorf("linear regression expects %d features, got %d", n, len(row))
	}
	x := mat.NewVecDense(n, append([]float64(nil), row...))
	return m.intercept + mat.Dot(m.coefficients, x), nil
}

// Type returns the model type
func (m *LinearRegression) Type() models.ModelType {
	return models.ModelTypeLinearRegression
}

// MinWidth returns the number of coefficients
func (m *LinearRegression) MinWidth() int {
	return m.coefficients.Len()
}
