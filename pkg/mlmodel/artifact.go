package mlmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mimir-aip/carprice/pkg/models"
	"gopkg.in/yaml.v3"
)

// Artifact is the on-disk description of a trained model
type Artifact struct {
	Type         string      `json:"type" yaml:"type"`
	FeatureNames []string    `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	NFeatures    int         `json:"n_features,omitempty" yaml:"n_features,omitempty"`
	Intercept    float64     `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Coefficients []float64   `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	Tree         *TreeNode   `json:"tree,omitempty" yaml:"tree,omitempty"`
	Trees        []*TreeNode `json:"trees,omitempty" yaml:"trees,omitempty"`
}

// LoadError reports an artifact that is missing or unusable
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a JSON or YAML artifact and builds a handle from it
func Load(path string) (*Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var artifact Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &artifact)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &artifact)
	default:
		err = fmt.Errorf("unsupported artifact format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	handle, err := artifact.Build()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	handle.path = path
	return handle, nil
}

// Build validates the artifact and creates its predictor
func (a *Artifact) Build() (*Handle, error) {
	modelType, err := models.ParseModelType(a.Type)
	if err != nil {
		return nil, err
	}

	var predictor Predictor
	switch modelType {
	case models.ModelTypeLinearRegression:
		predictor, err = NewLinearRegression(a.Coefficients, a.Intercept)
	case models.ModelTypeDecisionTree:
		if a.Tree == nil {
			return nil, fmt.Errorf("decision_tree artifact has no tree")
		}
		predictor, err = NewDecisionTree(a.Tree)
	case models.ModelTypeRandomForest:
		predictor, err = NewRandomForest(a.Trees)
	}
	if err != nil {
		return nil, err
	}

	width := a.NFeatures
	if n := len(a.FeatureNames); n > 0 {
		if width > 0 && width != n {
			return nil, fmt.Errorf("n_features is %d but %d feature names are listed", width, n)
		}
		width = n
	}
	if modelType == models.ModelTypeLinearRegression {
		if width > 0 && width != predictor.MinWidth() {
			return nil, fmt.Errorf("%d coefficients for %d features", predictor.MinWidth(), width)
		}
		width = predictor.MinWidth()
	}
	if width > 0 && width < predictor.MinWidth() {
		return nil, fmt.Errorf("model reads feature %d but declares only %d", predictor.MinWidth()-1, width)
	}

	return &Handle{
		predictor:    predictor,
		featureNames: append([]string(nil), a.FeatureNames...),
		width:        width,
	}, nil
}
