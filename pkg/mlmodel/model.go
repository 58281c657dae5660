// Package mlmodel loads the trained price model and keeps one shared handle
// for the life of the process.
package mlmodel

import (
	"fmt"
	"math"

	"github.com/mimir-aip/carprice/pkg/models"
)

// Predictor scores a single numeric row
type Predictor interface {
	Predict(row []float64) (float64, error)
	Type() models.ModelType
	// MinWidth is the smallest row the predictor can read
	MinWidth() int
}

// Handle is a loaded, read-only model. It is safe for concurrent use.
type Handle struct {
	path         string
	predictor    Predictor
	featureNames []string
	width        int
}

// Predict scores an aligned row
func (h *Handle) Predict(row *models.AlignedRow) (float64, error) {
	if row == nil {
		return 0, fmt.Errorf("no row to predict")
	}
	values := row.Values()
	if h.width > 0 && len(values) != h.width {
		return 0, fmt.Errorf("model expects %d features, row has %d", h.width, len(values))
	}
	if len(values) < h.predictor.MinWidth() {
		return 0, fmt.Errorf("model reads %d features, row has %d", h.predictor.MinWidth(), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("feature %d is not finite", i)
		}
	}
	return h.predictor.Predict(values)
}

// FeatureNames returns the training columns when the artifact lists them
func (h *Handle) FeatureNames() ([]string, bool) {
	if len(h.featureNames) == 0 {
		return nil, false
	}
	return append([]string(nil), h.featureNames...), true
}

// Type returns the model type
func (h *Handle) Type() models.ModelType {
	return h.predictor.Type()
}

// Path returns the artifact the handle was loaded from
func (h *Handle) Path() string {
	return h.path
}

// Width returns the fixed row width, or 0 when the artifact does not declare one
func (h *Handle) Width() int {
	return h.width
}

// Trees returns the number of trees for tree ensembles
func (h *Handle) Trees() int {
	switch p := h.predictor.(type) {
	case *RandomForest:
		return len(p.trees)
	case *DecisionTree:
		return 1
	default:
		return 0
	}
}
