package models

import (
	"fmt"
	"time"
)

// ModelType represents the type of a loaded regression model
type ModelType string

const (
	ModelTypeLinearRegression ModelType = "linear_regression"
	ModelTypeDecisionTree     ModelType = "decision_tree"
	ModelTypeRandomForest     ModelType = "random_forest"
)

// ParseModelType validates a model type name read from an artifact
func ParseModelType(name string) (ModelType, error) {
	switch t := ModelType(name); t {
	case ModelTypeLinearRegression, ModelTypeDecisionTree, ModelTypeRandomForest:
		return t, nil
	case "regression", "linear":
		return ModelTypeLinearRegression, nil
	default:
		return "", fmt.Errorf("unsupported model type: %q", name)
	}
}

// ModelStatus represents the load state of the model handle
type ModelStatus string

const (
	ModelStatusNotLoaded   ModelStatus = "not_loaded"  // First request has not happened yet
	ModelStatusReady       ModelStatus = "ready"       // Model loaded and serving
	ModelStatusUnavailable ModelStatus = "unavailable" // Artifact missing or unreadable
	ModelStatusClosed      ModelStatus = "closed"      // Handle released at shutdown
)

// ModelInfo describes the model handle for health and debug output
type ModelInfo struct {
	Path            string      `json:"path"`
	Type            ModelType   `json:"type,omitempty"`
	Status          ModelStatus `json:"status"`
	FeatureCount    int         `json:"feature_count"`
	HasFeatureNames bool        `json:"has_feature_names"`
	Trees           int         `json:"trees,omitempty"`
	PriceUnit       string      `json:"price_unit"`
	Error           string      `json:"error,omitempty"`
	LoadedAt        *time.Time  `json:"loaded_at,omitempty"`
}

// Ready reports whether the model can serve predictions
func (m ModelInfo) Ready() bool {
	return m.Status == ModelStatusReady
}
